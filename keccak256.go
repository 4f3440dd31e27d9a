///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// keccak256.go contains the types and batch dispatch for the Keccak-256
// op. The sponge itself lives in keccak_kernel.go.

// Keccak256Result carries one launch's digests or the launch error.
type Keccak256Result struct {
	Digests []Digest256
	Err     error
}

// Keccak256ChunkPrototype implements the cryptop interface for
// Keccak256Chunk
type Keccak256ChunkPrototype func(p *StreamPool, inputs [][]byte) ([]Digest256, error)

// GetName returns name of op (Keccak256Chunk)
func (Keccak256ChunkPrototype) GetName() string {
	return "Keccak256Chunk"
}

// GetInputSize is the size of each chunk for this op
func (Keccak256ChunkPrototype) GetInputSize() uint32 {
	return 256
}

// Keccak256 hashes one message on the host reference path.
func Keccak256(data []byte) Digest256 {
	sum := keccak256Sum(data)
	d, _ := Digest256FromBytes(sum[:])
	return d
}

// Keccak256Chunk hashes every input through the device, one lane-group
// per message, in input order.
var Keccak256Chunk Keccak256ChunkPrototype = func(p *StreamPool,
	inputs [][]byte) ([]Digest256, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	lp := hashLaunchShape(kernelKeccak256, inputs, Digest256Len)

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
		if sliceEnd > len(inputs) {
			sliceEnd = len(inputs)
		}
		result := <-keccak256Launch(inputs[i:sliceEnd], env, stream, lp)
		if result.Err != nil {
			return nil, result.Err
		}
		copy(digests[i:], result.Digests)
	}
	return digests, nil
}

func keccak256Launch(msgs [][]byte, env deviceEnv, stream *Stream,
	lp launchParams) chan Keccak256Result {
	resultChan := make(chan Keccak256Result, 1)
	go func() {
		lp.numSlots = len(msgs)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- Keccak256Result{Err: err}
			return
		}

		inputs := stream.getCpuInputs()
		for i, msg := range msgs {
			stageMessage(inputs[i*lp.inSize:(i+1)*lp.inSize], msg)
		}

		if err := runLaunch(env, stream); err != nil {
			resultChan <- Keccak256Result{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := Keccak256Result{Digests: make([]Digest256, lp.numSlots)}
		for i := range result.Digests {
			d, err := Digest256FromBytes(
				outputs[i*lp.outSize : (i+1)*lp.outSize])
			if err != nil {
				resultChan <- Keccak256Result{Err: err}
				return
			}
			result.Digests[i] = d
		}
		resultChan <- result
	}()
	return resultChan
}
