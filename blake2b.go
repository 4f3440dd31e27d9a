///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// blake2b.go contains validation, types, and batch dispatch for the
// BLAKE2b op. The compression function lives in blake2b_kernel.go.

import "encoding/binary"

const (
	// Blake2bMaxKeyLen bounds the optional key per RFC 7693
	Blake2bMaxKeyLen = 64
	blake2bSlotHdr   = 70 // hashSize(1) + keyLen(1) + key(64) + msgLen(4)
)

// Blake2bResult carries one launch's digests or the launch error.
type Blake2bResult struct {
	Digests []Digest512
	Err     error
}

// Blake2bChunkPrototype implements the cryptop interface for Blake2bChunk
type Blake2bChunkPrototype func(p *StreamPool, inputs [][]byte, key []byte,
	hashSize int) ([]Digest512, error)

// GetName returns name of op (Blake2bChunk)
func (Blake2bChunkPrototype) GetName() string {
	return "Blake2bChunk"
}

// GetInputSize is the size of each chunk for this op
func (Blake2bChunkPrototype) GetInputSize() uint32 {
	return 128
}

func validateBlake2bParams(key []byte, hashSize int) error {
	if hashSize < 1 || hashSize > Digest512Len {
		return validationErrorf("Blake2b",
			"hash size %v outside [1, 64]", hashSize)
	}
	if len(key) > Blake2bMaxKeyLen {
		return validationErrorf("Blake2b",
			"key of %v bytes exceeds the %v-byte maximum",
			len(key), Blake2bMaxKeyLen)
	}
	return nil
}

// Blake2b hashes one message on the host reference path. Only the first
// hashSize bytes of the returned digest are significant; the tail is
// zeroed so equal-significant digests compare equal.
func Blake2b(data, key []byte, hashSize int) (Digest512, error) {
	var d Digest512
	if err := validateBlake2bParams(key, hashSize); err != nil {
		return d, err
	}
	h := blake2bSum(data, key, hashSize)
	full := Digest512(h).ToBytes()
	for i := hashSize; i < Digest512Len; i++ {
		full[i] = 0
	}
	return Digest512FromBytes(full)
}

// Blake2bChunk hashes every input through the device under one shared key
// and hash size, one lane-group per message, in input order.
var Blake2bChunk Blake2bChunkPrototype = func(p *StreamPool,
	inputs [][]byte, key []byte, hashSize int) ([]Digest512, error) {
	if err := validateBlake2bParams(key, hashSize); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	maxLen := 0
	for _, in := range inputs {
		if len(in) > maxLen {
			maxLen = len(in)
		}
	}
	lp := launchParams{
		kern:    kernelBlake2b,
		inSize:  blake2bSlotHdr + maxLen,
		outSize: Digest512Len,
	}

	stream := p.TakeStream()
	defer p.ReturnStream(stream)
	env := chooseEnv()
	maxSlots := lp.maxSlots(len(stream.cpuData))
	if maxSlots < 1 {
		return nil, streamTooSmallError(lp, len(stream.cpuData))
	}

	digests := make([]Digest512, len(inputs))
	for i := 0; i < len(inputs); i += maxSlots {
		sliceEnd := i + maxSlots
		if sliceEnd > len(inputs) {
			sliceEnd = len(inputs)
		}
		result := <-blake2bLaunch(inputs[i:sliceEnd], key, hashSize,
			env, stream, lp)
		if result.Err != nil {
			return nil, result.Err
		}
		copy(digests[i:], result.Digests)
	}
	return digests, nil
}

func blake2bLaunch(msgs [][]byte, key []byte, hashSize int, env deviceEnv,
	stream *Stream, lp launchParams) chan Blake2bResult {
	resultChan := make(chan Blake2bResult, 1)
	go func() {
		lp.numSlots = len(msgs)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- Blake2bResult{Err: err}
			return
		}

		inputs := stream.getCpuInputs()
		for i, msg := range msgs {
			slot := inputs[i*lp.inSize : (i+1)*lp.inSize]
			slot[0] = byte(hashSize)
			slot[1] = byte(len(key))
			copy(slot[2:66], key)
			binary.LittleEndian.PutUint32(slot[66:70], uint32(len(msg)))
			copy(slot[blake2bSlotHdr:], msg)
		}

		if err := runLaunch(env, stream); err != nil {
			resultChan <- Blake2bResult{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := Blake2bResult{Digests: make([]Digest512, lp.numSlots)}
		for i := range result.Digests {
			slot := outputs[i*lp.outSize : (i+1)*lp.outSize]
			buf := make([]byte, Digest512Len)
			copy(buf, slot[:hashSize])
			d, err := Digest512FromBytes(buf)
			if err != nil {
				resultChan <- Blake2bResult{Err: err}
				return
			}
			result.Digests[i] = d
		}
		resultChan <- result
	}()
	return resultChan
}
