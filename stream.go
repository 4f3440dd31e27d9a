///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import "github.com/pkg/errors"

// stream.go contains the stream and stream pool. A stream is one staging
// buffer plus whatever device-side state the env attached to it; the pool
// hands streams out over a channel so no two concurrent ops ever share a
// buffer.

// Stream is one unit of device work capacity. The cpuData buffer holds
// the staged launch as [constants | input slots | output slots].
type Stream struct {
	cpuData []byte
	launch  launchParams
	// env-private state: the cpu env parks its lane group here, the gpu
	// env its device stream pointer
	dev interface{}
}

func (s *Stream) getCpuConstants() []byte {
	return s.cpuData[:s.launch.constSize]
}

func (s *Stream) getCpuInputs() []byte {
	start := s.launch.constSize
	return s.cpuData[start : start+s.launch.inSize*s.launch.numSlots]
}

func (s *Stream) getCpuOutputs() []byte {
	start := s.launch.constSize + s.launch.inSize*s.launch.numSlots
	return s.cpuData[start : start+s.launch.outSize*s.launch.numSlots]
}

// StreamPool hands out streams for exclusive use during one launch
// sequence. Taking from the channel prevents concurrent access; Destroy
// releases every stream's buffers.
type StreamPool struct {
	streamChan chan *Stream
	streams    []*Stream
	env        deviceEnv
}

// NewStreamPool creates numStreams streams, each with memSize bytes of
// staging capacity. 2 streams is usually enough to overlap staging with
// execution.
func NewStreamPool(numStreams, memSize int) (*StreamPool, error) {
	if numStreams <= 0 || memSize <= 0 {
		return nil, errors.Errorf("stream pool needs positive stream "+
			"count and memory size, got %v x %v", numStreams, memSize)
	}
	env := chooseEnv()
	result := &StreamPool{env: env}
	for i := 0; i < numStreams; i++ {
		s, err := env.createStream(memSize)
		if err != nil {
			// Release whatever was created to avoid leaking device memory
			for j := range result.streams {
				_ = env.destroyStream(result.streams[j])
			}
			return nil, errors.Wrapf(err, "creating stream %v", i)
		}
		result.streams = append(result.streams, s)
	}
	result.streamChan = make(chan *Stream, len(result.streams))
	for i := range result.streams {
		result.streamChan <- result.streams[i]
	}
	return result, nil
}

// TakeStream blocks until a stream is free and checks it out.
func (sp *StreamPool) TakeStream() *Stream {
	return <-sp.streamChan
}

// ReturnStream checks a stream back in.
func (sp *StreamPool) ReturnStream(s *Stream) {
	if s != nil {
		sp.streamChan <- s
	}
}

// Destroy releases all the pool's streams. It does not wait for in-flight
// work; callers should return all streams first.
func (sp *StreamPool) Destroy() error {
	var firstErr error
	for i := range sp.streams {
		if err := sp.env.destroyStream(sp.streams[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
