///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// sha256.go contains the types and batch dispatch for the SHA-256 op.
// The per-lane algorithm lives in sha256_kernel.go.

import (
	"encoding/binary"
	"log"
)

// Sha256Result carries one launch's digests or the launch error.
type Sha256Result struct {
	Digests []Digest256
	Err     error
}

// Sha256ChunkPrototype implements the cryptop interface for Sha256Chunk
type Sha256ChunkPrototype func(p *StreamPool, inputs [][]byte) ([]Digest256, error)

// GetName returns name of op (Sha256Chunk)
func (Sha256ChunkPrototype) GetName() string {
	return "Sha256Chunk"
}

// GetInputSize is the size of each chunk for this op
func (Sha256ChunkPrototype) GetInputSize() uint32 {
	return 256
}

// Sha256 hashes one message on the host reference path. Any input length,
// including empty, is valid.
func Sha256(data []byte) Digest256 {
	sum := sha256Sum(data)
	d, _ := Digest256FromBytes(sum[:])
	return d
}

// Sha256Chunk hashes every input through the device, one lane-group per
// message, in input order. Oversized batches are split into smaller
// launches that fit the stream buffer.
var Sha256Chunk Sha256ChunkPrototype = func(p *StreamPool,
	inputs [][]byte) ([]Digest256, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	lp := hashLaunchShape(kernelSha256, inputs, Digest256Len)

	stream := p.TakeStream()
	defer p.ReturnStream(stream)
	env := chooseEnv()
	maxSlots := lp.maxSlots(len(stream.cpuData))
	if maxSlots < 1 {
		return nil, streamTooSmallError(lp, len(stream.cpuData))
	}

	digests := make([]Digest256, len(inputs))
	for i := 0; i < len(inputs); i += maxSlots {
		sliceEnd := i + maxSlots
		// Don't slice beyond the end of the input slice
		if sliceEnd > len(inputs) {
			sliceEnd = len(inputs)
		}
		result := <-sha256Launch(inputs[i:sliceEnd], env, stream, lp)
		if result.Err != nil {
			return nil, result.Err
		}
		copy(digests[i:], result.Digests)
	}
	return digests, nil
}

// sha256Launch stages one chunk of messages into the stream, runs the
// launch sequence, and unpacks the digests when the device finishes.
func sha256Launch(msgs [][]byte, env deviceEnv, stream *Stream,
	lp launchParams) chan Sha256Result {
	resultChan := make(chan Sha256Result, 1)
	go func() {
		lp.numSlots = len(msgs)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- Sha256Result{Err: err}
			return
		}

		// Arrange memory into stream buffers
		inputs := stream.getCpuInputs()
		for i, msg := range msgs {
			stageMessage(inputs[i*lp.inSize:(i+1)*lp.inSize], msg)
		}

		// Upload, run, wait for download
		if err := runLaunch(env, stream); err != nil {
			resultChan <- Sha256Result{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := Sha256Result{Digests: make([]Digest256, lp.numSlots)}
		for i := range result.Digests {
			d, err := Digest256FromBytes(
				outputs[i*lp.outSize : (i+1)*lp.outSize])
			if err != nil {
				resultChan <- Sha256Result{Err: err}
				return
			}
			result.Digests[i] = d
		}
		resultChan <- result
	}()
	return resultChan
}

// hashLaunchShape sizes a hash launch: each input slot frames its message
// with a 4-byte length at a stride wide enough for the longest message in
// the batch. The padding waste buys a trivial offset scheme.
func hashLaunchShape(k kernel, inputs [][]byte, outSize int) launchParams {
	maxLen := 0
	for _, in := range inputs {
		if len(in) > maxLen {
			maxLen = len(in)
		}
	}
	return launchParams{
		kern:    k,
		inSize:  4 + maxLen,
		outSize: outSize,
	}
}

// stageMessage frames one message into its slot.
func stageMessage(slot []byte, msg []byte) {
	binary.LittleEndian.PutUint32(slot[:4], uint32(len(msg)))
	copy(slot[4:], msg)
}

// runLaunch drives the env through one full launch sequence.
func runLaunch(env deviceEnv, stream *Stream) error {
	if err := env.put(stream); err != nil {
		return err
	}
	if err := env.run(stream); err != nil {
		return err
	}
	if err := env.download(stream); err != nil {
		return err
	}
	return env.get(stream)
}

// Bounds check to make sure that the stream can take all the inputs
func validateLaunchFits(lp launchParams, stream *Stream) {
	maxSlots := lp.maxSlots(len(stream.cpuData))
	if lp.numSlots > maxSlots {
		// This can only happen because of user error (unlike device
		// problems), so panic to make the error apparent
		log.Panicf("%v slots is more than this stream's max of %v for "+
			"%v kernel", lp.numSlots, maxSlots, lp.kern)
	}
}
