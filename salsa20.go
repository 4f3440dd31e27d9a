///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// salsa20.go is the original Salsa20 stream cipher with the canonical
// state layout: the four "expand 32-byte k" words on the diagonal, key
// halves above and below, 64-bit nonce and 64-bit counter through the
// middle. Like ChaCha20, every 64-byte block is independent given its
// counter value.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Salsa20KeyLen is the key length in bytes
	Salsa20KeyLen = 32
	// Salsa20NonceLen is the 64-bit nonce length in bytes
	Salsa20NonceLen = 8
	salsaBlockLen   = 64
	salsaSlotHdr    = 52 // key(32) + nonce(8) + counter(8) + msgLen(4)
)

func init() {
	laneKernels[kernelSalsa20] = salsa20Lane
}

// Salsa20Result returns results for each slot or a launch-wide error.
type Salsa20Result struct {
	Results []OperationResult
	Err     error
}

// Salsa20ChunkPrototype implements the cryptop interface for Salsa20Chunk
type Salsa20ChunkPrototype func(p *StreamPool, inputs, keys,
	nonces [][]byte, counter uint64) ([]OperationResult, error)

// GetName returns name of op (Salsa20Chunk)
func (Salsa20ChunkPrototype) GetName() string {
	return "Salsa20Chunk"
}

// GetInputSize is the size of each chunk for this op
func (Salsa20ChunkPrototype) GetInputSize() uint32 {
	return 256
}

func validateSalsa20Input(key, nonce []byte) error {
	if len(key) != Salsa20KeyLen {
		return validationErrorf("Salsa20",
			"key must be %v bytes, got %v", Salsa20KeyLen, len(key))
	}
	if len(nonce) != Salsa20NonceLen {
		return validationErrorf("Salsa20",
			"nonce must be %v bytes, got %v", Salsa20NonceLen, len(nonce))
	}
	return nil
}

// Salsa20 XORs data with the keystream on the host reference path.
func Salsa20(data, key, nonce []byte, counter uint64) ([]byte, error) {
	if err := validateSalsa20Input(key, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	salsa20XOR(out, data, key, nonce, counter)
	return out, nil
}

// Salsa20Chunk runs every input through the device under its own key and
// nonce, all starting at the same block counter.
var Salsa20Chunk Salsa20ChunkPrototype = func(p *StreamPool, inputs,
	keys, nonces [][]byte, counter uint64) ([]OperationResult, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if len(keys) != len(inputs) || len(nonces) != len(inputs) {
		return nil, validationErrorf("Salsa20Chunk",
			"%v inputs but %v keys and %v nonces",
			len(inputs), len(keys), len(nonces))
	}

	results := make([]OperationResult, len(inputs))
	var items []streamItem
	maxLen := 0
	for i := range inputs {
		if err := validateSalsa20Input(keys[i], nonces[i]); err != nil {
			results[i] = failedResult(err)
			continue
		}
		items = append(items, streamItem{idx: i, data: inputs[i],
			key: keys[i], nonce: nonces[i]})
		if len(inputs[i]) > maxLen {
			maxLen = len(inputs[i])
		}
	}
	if len(items) == 0 {
		return results, nil
	}

	lp := launchParams{
		kern:    kernelSalsa20,
		inSize:  salsaSlotHdr + maxLen,
		outSize: maxLen,
	}

	stream := p.TakeStream()
	defer p.ReturnStream(stream)
	env := chooseEnv()
	maxSlots := lp.maxSlots(len(stream.cpuData))
	if maxSlots < 1 {
		return nil, streamTooSmallError(lp, len(stream.cpuData))
	}

	for i := 0; i < len(items); i += maxSlots {
		sliceEnd := i + maxSlots
		if sliceEnd > len(items) {
			sliceEnd = len(items)
		}
		result := <-salsa20Launch(items[i:sliceEnd], counter, env,
			stream, lp)
		if result.Err != nil {
			return nil, result.Err
		}
		for j := range result.Results {
			results[items[i+j].idx] = result.Results[j]
		}
	}
	return results, nil
}

func salsa20Launch(items []streamItem, counter uint64, env deviceEnv,
	stream *Stream, lp launchParams) chan Salsa20Result {
	resultChan := make(chan Salsa20Result, 1)
	go func() {
		lp.numSlots = len(items)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- Salsa20Result{Err: err}
			return
		}

		inputs := stream.getCpuInputs()
		for i, item := range items {
			slot := inputs[i*lp.inSize : (i+1)*lp.inSize]
			copy(slot[:32], item.key)
			copy(slot[32:40], item.nonce)
			binary.LittleEndian.PutUint64(slot[40:48], counter)
			binary.LittleEndian.PutUint32(slot[48:52],
				uint32(len(item.data)))
			copy(slot[salsaSlotHdr:], item.data)
		}

		if err := runLaunch(env, stream); err != nil {
			resultChan <- Salsa20Result{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := Salsa20Result{
			Results: make([]OperationResult, lp.numSlots),
		}
		for i, item := range items {
			slot := outputs[i*lp.outSize : (i+1)*lp.outSize]
			out := make([]byte, len(item.data))
			copy(out, slot[:len(item.data)])
			result.Results[i] = okResult(out)
		}
		resultChan <- result
	}()
	return resultChan
}

func salsa20Lane(constants, in, out []byte) error {
	key := in[:32]
	nonce := in[32:40]
	counter := binary.LittleEndian.Uint64(in[40:48])
	msgLen := int(binary.LittleEndian.Uint32(in[48:52]))
	if salsaSlotHdr+msgLen > len(in) {
		return errors.Errorf("salsa20 slot frames %v bytes but holds %v",
			msgLen, len(in)-salsaSlotHdr)
	}
	salsa20XOR(out[:msgLen], in[salsaSlotHdr:salsaSlotHdr+msgLen],
		key, nonce, counter)
	return nil
}

func salsa20XOR(dst, src, key, nonce []byte, counter uint64) {
	var block [salsaBlockLen]byte
	for i := 0; i < len(src); i += salsaBlockLen {
		salsa20Block(key, nonce, counter+uint64(i/salsaBlockLen), &block)
		n := len(src) - i
		if n > salsaBlockLen {
			n = salsaBlockLen
		}
		xorBytes(dst[i:i+n], src[i:i+n], block[:n])
	}
}

// salsa20Block produces one 64-byte keystream block. State positions
// follow the original spec exactly: constants at 0, 5, 10, 15; key words
// at 1-4 and 11-14; nonce at 6-7; counter at 8-9.
func salsa20Block(key, nonce []byte, counter uint64,
	out *[salsaBlockLen]byte) {
	var s [16]uint32
	s[0] = chachaConst[0]
	s[5] = chachaConst[1]
	s[10] = chachaConst[2]
	s[15] = chachaConst[3]
	for i := 0; i < 4; i++ {
		s[1+i] = binary.LittleEndian.Uint32(key[i*4:])
		s[11+i] = binary.LittleEndian.Uint32(key[16+i*4:])
	}
	s[6] = binary.LittleEndian.Uint32(nonce[0:])
	s[7] = binary.LittleEndian.Uint32(nonce[4:])
	s[8] = uint32(counter)
	s[9] = uint32(counter >> 32)

	x := s
	for i := 0; i < 10; i++ {
		// Column round
		salsaQR(&x, 0, 4, 8, 12)
		salsaQR(&x, 5, 9, 13, 1)
		salsaQR(&x, 10, 14, 2, 6)
		salsaQR(&x, 15, 3, 7, 11)
		// Row round
		salsaQR(&x, 0, 1, 2, 3)
		salsaQR(&x, 5, 6, 7, 4)
		salsaQR(&x, 10, 11, 8, 9)
		salsaQR(&x, 15, 12, 13, 14)
	}
	for i := range x {
		binary.LittleEndian.PutUint32(out[i*4:], x[i]+s[i])
	}
}

// salsaQR is the add-rotate-xor quarter round with the 7, 9, 13, 18
// rotation schedule.
func salsaQR(x *[16]uint32, a, b, c, d int) {
	x[b] ^= rotl32(x[a]+x[d], 7)
	x[c] ^= rotl32(x[b]+x[a], 9)
	x[d] ^= rotl32(x[c]+x[b], 13)
	x[a] ^= rotl32(x[d]+x[c], 18)
}
