///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// env_cpu.go is the emulated data-parallel device: every slot of a launch
// runs its lane-group program on its own goroutine over the shared staging
// buffer. This is the reference execution path; the gpu env must match its
// output bit for bit. Unlike an accelerator there is no separate device
// memory, so put and download are no-ops and run/get carry the
// launch/synchronize split.

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type cpuEnv struct{}

func (cpuEnv) createStream(memSize int) (*Stream, error) {
	return &Stream{cpuData: make([]byte, memSize)}, nil
}

func (cpuEnv) destroyStream(s *Stream) error {
	if s == nil {
		return nil
	}
	s.cpuData = nil
	s.dev = nil
	return nil
}

func (cpuEnv) stage(s *Stream, lp launchParams) error {
	if need := lp.streamSizeContaining(lp.numSlots); need > len(s.cpuData) {
		return errors.Errorf("launch of %v %v slots needs %v bytes, "+
			"stream has %v", lp.numSlots, lp.kern, need, len(s.cpuData))
	}
	s.launch = lp
	return nil
}

func (cpuEnv) put(s *Stream) error {
	// Host memory is device memory here
	return nil
}

func (cpuEnv) run(s *Stream) error {
	kern, ok := laneKernels[s.launch.kern]
	if !ok {
		return errors.Errorf("no kernel registered for %v", s.launch.kern)
	}
	lp := s.launch
	constants := s.getCpuConstants()
	inputs := s.getCpuInputs()
	outputs := s.getCpuOutputs()
	var g errgroup.Group
	for i := 0; i < lp.numSlots; i++ {
		in := inputs[i*lp.inSize : (i+1)*lp.inSize]
		out := outputs[i*lp.outSize : (i+1)*lp.outSize]
		g.Go(func() error {
			return kern(constants, in, out)
		})
	}
	s.dev = &g
	return nil
}

func (cpuEnv) download(s *Stream) error {
	return nil
}

func (cpuEnv) get(s *Stream) error {
	g, ok := s.dev.(*errgroup.Group)
	if !ok {
		return errors.New("get called without a pending launch")
	}
	s.dev = nil
	return g.Wait()
}
