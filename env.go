///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// env.go defines the seam between the per-operation dispatch code and the
// execution device. An env owns stream creation, host<->device transfer,
// kernel launch, and synchronization. The default env is the emulated
// lane-parallel device in env_cpu.go; builds with `-tags gpu` swap in the
// CUDA-backed env from env_gpu.go. Both envs run the same kernels in
// kernel registration, so their outputs are bit-identical.

import "github.com/pkg/errors"

// kernel identifies which per-lane program a launch runs.
type kernel int

const (
	kernelSha256 kernel = iota
	kernelKeccak256
	kernelBlake2b
	kernelAesEnc
	kernelAesDec
	kernelChaCha20
	kernelSalsa20
)

func (k kernel) String() string {
	switch k {
	case kernelSha256:
		return "Sha256"
	case kernelKeccak256:
		return "Keccak256"
	case kernelBlake2b:
		return "Blake2b"
	case kernelAesEnc:
		return "AesEncrypt"
	case kernelAesDec:
		return "AesDecrypt"
	case kernelChaCha20:
		return "ChaCha20"
	case kernelSalsa20:
		return "Salsa20"
	default:
		return "unknown"
	}
}

// launchParams sizes one launch: how many lane-groups (slots) run, and
// the byte footprint of the shared constants region and of each slot's
// input and output regions inside the stream buffer.
type launchParams struct {
	kern      kernel
	numSlots  int
	constSize int
	inSize    int
	outSize   int
}

// maxSlots returns how many slots of this shape fit in a stream buffer of
// memSize bytes. Ops use it to split oversized batches into chunks, the
// same way the pool users chunk their input buffers.
func (lp launchParams) maxSlots(memSize int) int {
	perSlot := lp.inSize + lp.outSize
	if perSlot <= 0 {
		return 0
	}
	n := (memSize - lp.constSize) / perSlot
	if n < 0 {
		return 0
	}
	return n
}

// streamSizeContaining returns the stream buffer size needed to run
// numItems slots of this shape in a single launch.
func (lp launchParams) streamSizeContaining(numItems int) int {
	return lp.constSize + (lp.inSize+lp.outSize)*numItems
}

// laneKernel is the per-lane-group program signature. constants is the
// launch-wide read-only region; in and out are this lane-group's private
// slot regions. A lane-group owns its slot exclusively, so kernels never
// synchronize with each other.
type laneKernel func(constants, in, out []byte) error

// laneKernels is populated by each *_kernel.go file's init.
var laneKernels = make(map[kernel]laneKernel)

// deviceEnv is the device abstraction consumed by every Chunk op:
// allocate, copy to device, launch across lanes, copy back, synchronize.
type deviceEnv interface {
	// createStream allocates a stream with memSize bytes of staging buffer
	createStream(memSize int) (*Stream, error)
	// destroyStream releases the stream's buffers
	destroyStream(s *Stream) error
	// stage records the launch geometry and bounds-checks it against the
	// stream capacity; after stage the cpu regions may be written
	stage(s *Stream, lp launchParams) error
	// put copies the staged constants and inputs to the device
	put(s *Stream) error
	// run launches one lane-group per slot; it does not block
	run(s *Stream) error
	// download enqueues the device->host copy of the outputs
	download(s *Stream) error
	// get blocks until the launch and download have finished
	get(s *Stream) error
}

// streamTooSmallError reports a stream buffer that cannot hold even one
// slot of the requested launch shape.
func streamTooSmallError(lp launchParams, memSize int) error {
	return errors.Errorf("stream buffer of %v bytes cannot hold a single "+
		"%v slot (%v constant + %v input + %v output bytes)",
		memSize, lp.kern, lp.constSize, lp.inSize, lp.outSize)
}

// defaultEnv is overridden at init by the gpu build.
var defaultEnv deviceEnv = cpuEnv{}

func chooseEnv() deviceEnv {
	return defaultEnv
}
