///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// chacha20.go is the RFC 8439 stream cipher: types, dispatch, and the
// block function. Every 64-byte keystream block derives fresh from
// (key, nonce, counter+blockIndex), so the whole message is parallel
// across blocks and the batch is parallel across messages.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// ChaCha20KeyLen is the key length in bytes
	ChaCha20KeyLen = 32
	// ChaCha20NonceLen is the 96-bit nonce length in bytes
	ChaCha20NonceLen = 12
	chachaBlockLen   = 64
	chachaSlotHdr    = 52 // key(32) + nonce(12) + counter(4) + msgLen(4)
)

func init() {
	laneKernels[kernelChaCha20] = chacha20Lane
}

// ChaCha20Result returns results for each slot or a launch-wide error.
type ChaCha20Result struct {
	Results []OperationResult
	Err     error
}

// ChaCha20ChunkPrototype implements the cryptop interface for
// ChaCha20Chunk
type ChaCha20ChunkPrototype func(p *StreamPool, inputs, keys,
	nonces [][]byte, counter uint32) ([]OperationResult, error)

// GetName returns name of op (ChaCha20Chunk)
func (ChaCha20ChunkPrototype) GetName() string {
	return "ChaCha20Chunk"
}

// GetInputSize is the size of each chunk for this op
func (ChaCha20ChunkPrototype) GetInputSize() uint32 {
	return 256
}

func validateChaCha20Input(key, nonce []byte) error {
	if len(key) != ChaCha20KeyLen {
		return validationErrorf("ChaCha20",
			"key must be %v bytes, got %v", ChaCha20KeyLen, len(key))
	}
	if len(nonce) != ChaCha20NonceLen {
		return validationErrorf("ChaCha20",
			"nonce must be %v bytes, got %v", ChaCha20NonceLen, len(nonce))
	}
	return nil
}

// ChaCha20 XORs data with the keystream on the host reference path.
// Applying it twice with the same key, nonce, and counter round-trips.
func ChaCha20(data, key, nonce []byte, counter uint32) ([]byte, error) {
	if err := validateChaCha20Input(key, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	chacha20XOR(out, data, key, nonce, counter)
	return out, nil
}

// ChaCha20Chunk runs every input through the device under its own key and
// nonce, all starting at the same block counter.
var ChaCha20Chunk ChaCha20ChunkPrototype = func(p *StreamPool, inputs,
	keys, nonces [][]byte, counter uint32) ([]OperationResult, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if len(keys) != len(inputs) || len(nonces) != len(inputs) {
		return nil, validationErrorf("ChaCha20Chunk",
			"%v inputs but %v keys and %v nonces",
			len(inputs), len(keys), len(nonces))
	}

	results := make([]OperationResult, len(inputs))
	var items []streamItem
	maxLen := 0
	for i := range inputs {
		if err := validateChaCha20Input(keys[i], nonces[i]); err != nil {
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
		kern:    kernelChaCha20,
		inSize:  chachaSlotHdr + maxLen,
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
		result := <-chacha20Launch(items[i:sliceEnd], counter, env,
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

// streamItem is one validated stream-cipher batch member.
type streamItem struct {
	idx   int
	data  []byte
	key   []byte
	nonce []byte
}

func chacha20Launch(items []streamItem, counter uint32, env deviceEnv,
	stream *Stream, lp launchParams) chan ChaCha20Result {
	resultChan := make(chan ChaCha20Result, 1)
	go func() {
		lp.numSlots = len(items)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- ChaCha20Result{Err: err}
			return
		}

		inputs := stream.getCpuInputs()
		for i, item := range items {
			slot := inputs[i*lp.inSize : (i+1)*lp.inSize]
			copy(slot[:32], item.key)
			copy(slot[32:44], item.nonce)
			binary.LittleEndian.PutUint32(slot[44:48], counter)
			binary.LittleEndian.PutUint32(slot[48:52],
				uint32(len(item.data)))
			copy(slot[chachaSlotHdr:], item.data)
		}

		if err := runLaunch(env, stream); err != nil {
			resultChan <- ChaCha20Result{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := ChaCha20Result{
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

func chacha20Lane(constants, in, out []byte) error {
	key := in[:32]
	nonce := in[32:44]
	counter := binary.LittleEndian.Uint32(in[44:48])
	msgLen := int(binary.LittleEndian.Uint32(in[48:52]))
	if chachaSlotHdr+msgLen > len(in) {
		return errors.Errorf("chacha20 slot frames %v bytes but holds %v",
			msgLen, len(in)-chachaSlotHdr)
	}
	chacha20XOR(out[:msgLen], in[chachaSlotHdr:chachaSlotHdr+msgLen],
		key, nonce, counter)
	return nil
}

// chacha20XOR XORs src into dst under the keystream. Block i of the
// keystream uses counter+i and nothing else from its neighbors.
func chacha20XOR(dst, src, key, nonce []byte, counter uint32) {
	var block [chachaBlockLen]byte
	for i := 0; i < len(src); i += chachaBlockLen {
		chacha20Block(key, nonce, counter+uint32(i/chachaBlockLen), &block)
		n := len(src) - i
		if n > chachaBlockLen {
			n = chachaBlockLen
		}
		xorBytes(dst[i:i+n], src[i:i+n], block[:n])
	}
}

// chacha20Block produces one 64-byte keystream block: constants, key,
// counter, nonce through 10 double rounds plus the feed-forward add.
func chacha20Block(key, nonce []byte, counter uint32,
	out *[chachaBlockLen]byte) {
	var s [16]uint32
	s[0], s[1], s[2], s[3] = chachaConst[0], chachaConst[1],
		chachaConst[2], chachaConst[3]
	for i := 0; i < 8; i++ {
		s[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	s[12] = counter
	s[13] = binary.LittleEndian.Uint32(nonce[0:])
	s[14] = binary.LittleEndian.Uint32(nonce[4:])
	s[15] = binary.LittleEndian.Uint32(nonce[8:])

	x := s
	for i := 0; i < 10; i++ {
		// Column round
		chachaQR(&x, 0, 4, 8, 12)
		chachaQR(&x, 1, 5, 9, 13)
		chachaQR(&x, 2, 6, 10, 14)
		chachaQR(&x, 3, 7, 11, 15)
		// Diagonal round
		chachaQR(&x, 0, 5, 10, 15)
		chachaQR(&x, 1, 6, 11, 12)
		chachaQR(&x, 2, 7, 8, 13)
		chachaQR(&x, 3, 4, 9, 14)
	}
	for i := range x {
		binary.LittleEndian.PutUint32(out[i*4:], x[i]+s[i])
	}
}

func rotl32(x uint32, n uint) uint32 {
	return x<<n | x>>(32-n)
}

func chachaQR(x *[16]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] = rotl32(x[d]^x[a], 16)
	x[c] += x[d]
	x[b] = rotl32(x[b]^x[c], 12)
	x[a] += x[b]
	x[d] = rotl32(x[d]^x[a], 8)
	x[c] += x[d]
	x[b] = rotl32(x[b]^x[c], 7)
}
