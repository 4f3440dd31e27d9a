///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// aes.go contains validation, the host reference entry points, and the
// batch dispatch for the AES op. The block transform and key schedule
// live in aes_kernel.go, the modes in aes_modes.go and gcm.go.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const aesSlotHdr = 53 // keyLen(1) + key(32) + iv(16) + msgLen(4)

// AesResultSlot is one item's outcome inside a batch launch.
type AesResultSlot struct {
	Result OperationResult
}

// AesResult returns results for each slot or a launch-wide error.
type AesResult struct {
	Slots []AesResultSlot
	Err   error
}

// AesChunkPrototype implements the cryptop interface for the AES batch
// ops. ivs may be nil when the mode needs no IV.
type AesChunkPrototype func(p *StreamPool, inputs, keys, ivs [][]byte,
	mode CipherMode) ([]OperationResult, error)

// GetName returns name of op (AesChunk)
func (AesChunkPrototype) GetName() string {
	return "AesChunk"
}

// GetInputSize is the size of each chunk for this op
func (AesChunkPrototype) GetInputSize() uint32 {
	return 128
}

// validateAesInput checks the shape of one item before any device work.
func validateAesInput(op string, data, key, iv []byte, mode CipherMode,
	encrypt bool) error {
	if mode == nil {
		return validationErrorf(op, "nil cipher mode")
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return validationErrorf(op,
			"key must be 16, 24, or 32 bytes, got %v", len(key))
	}
	if mode.NeedsIV() && len(iv) != AesBlockLen {
		return validationErrorf(op,
			"%v mode requires a %v-byte IV, got %v bytes",
			mode, AesBlockLen, len(iv))
	}
	if encrypt {
		if len(data)%AesBlockLen != 0 {
			return validationErrorf(op,
				"plaintext length %v is not a multiple of %v",
				len(data), AesBlockLen)
		}
	} else if _, err := mode.openedLen(len(data)); err != nil {
		return validationErrorf(op, "%v: %v", mode, err)
	}
	return nil
}

// AesEncrypt encrypts one block-aligned plaintext on the host reference
// path. Ownership of the output buffer transfers to the caller.
func AesEncrypt(plaintext, key, iv []byte, mode CipherMode) OperationResult {
	if err := validateAesInput("AesEncrypt", plaintext, key, iv, mode,
		true); err != nil {
		return failedResult(err)
	}
	k, err := NewAESKey(key)
	if err != nil {
		return failedResult(err)
	}
	dst := make([]byte, mode.sealedLen(len(plaintext)))
	mode.seal(k, iv, plaintext, dst)
	return okResult(dst)
}

// AesDecrypt decrypts one ciphertext on the host reference path. For GCM
// the tag is verified before any plaintext is produced.
func AesDecrypt(ciphertext, key, iv []byte, mode CipherMode) OperationResult {
	if err := validateAesInput("AesDecrypt", ciphertext, key, iv, mode,
		false); err != nil {
		return failedResult(err)
	}
	k, err := NewAESKey(key)
	if err != nil {
		return failedResult(err)
	}
	ptLen, err := mode.openedLen(len(ciphertext))
	if err != nil {
		return failedResult(err)
	}
	dst := make([]byte, ptLen)
	if !mode.open(k, iv, ciphertext, dst) {
		return failedResult(errors.Errorf(
			"AesDecrypt: %v message authentication failed", mode))
	}
	return okResult(dst)
}

// AesEncryptChunk encrypts every item through the device, one lane-group
// per plaintext. Items that fail validation report their own failed
// OperationResult without aborting siblings.
var AesEncryptChunk AesChunkPrototype = func(p *StreamPool, inputs, keys,
	ivs [][]byte, mode CipherMode) ([]OperationResult, error) {
	return aesChunk(p, inputs, keys, ivs, mode, true)
}

// AesDecryptChunk is the decrypt direction of AesEncryptChunk, including
// per-item tag verification under GCM.
var AesDecryptChunk AesChunkPrototype = func(p *StreamPool, inputs, keys,
	ivs [][]byte, mode CipherMode) ([]OperationResult, error) {
	return aesChunk(p, inputs, keys, ivs, mode, false)
}

// aesItem is one validated batch member and its original position.
type aesItem struct {
	idx  int
	data []byte
	key  []byte
	iv   []byte
}

func aesChunk(p *StreamPool, inputs, keys, ivs [][]byte, mode CipherMode,
	encrypt bool) ([]OperationResult, error) {
	op := "AesEncryptChunk"
	if !encrypt {
		op = "AesDecryptChunk"
	}
	if len(inputs) == 0 {
		return nil, nil
	}
	if len(keys) != len(inputs) {
		return nil, validationErrorf(op,
			"%v inputs but %v keys", len(inputs), len(keys))
	}
	if ivs != nil && len(ivs) != len(inputs) {
		return nil, validationErrorf(op,
			"%v inputs but %v IVs", len(inputs), len(ivs))
	}
	if mode == nil {
		return nil, validationErrorf(op, "nil cipher mode")
	}

	// Validate per item; bad items fail alone and never reach the device
	results := make([]OperationResult, len(inputs))
	var items []aesItem
	maxLen := 0
	for i := range inputs {
		var iv []byte
		if ivs != nil {
			iv = ivs[i]
		}
		if err := validateAesInput(op, inputs[i], keys[i], iv, mode,
			encrypt); err != nil {
			results[i] = failedResult(err)
			continue
		}
		items = append(items, aesItem{idx: i, data: inputs[i],
			key: keys[i], iv: iv})
		if len(inputs[i]) > maxLen {
			maxLen = len(inputs[i])
		}
	}
	if len(items) == 0 {
		return results, nil
	}

	maxOut := maxLen
	if encrypt {
		maxOut = mode.sealedLen(maxLen)
	}
	kern := kernelAesEnc
	if !encrypt {
		kern = kernelAesDec
	}
	lp := launchParams{
		kern:      kern,
		constSize: 1,
		inSize:    aesSlotHdr + maxLen,
		outSize:   1 + maxOut,
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
		result := <-aesLaunch(items[i:sliceEnd], mode, encrypt, env,
			stream, lp)
		if result.Err != nil {
			return nil, result.Err
		}
		for j := range result.Slots {
			results[items[i+j].idx] = result.Slots[j].Result
		}
	}
	return results, nil
}

func aesLaunch(items []aesItem, mode CipherMode, encrypt bool,
	env deviceEnv, stream *Stream, lp launchParams) chan AesResult {
	resultChan := make(chan AesResult, 1)
	go func() {
		lp.numSlots = len(items)
		validateLaunchFits(lp, stream)
		if err := env.stage(stream, lp); err != nil {
			resultChan <- AesResult{Err: err}
			return
		}

		stream.getCpuConstants()[0] = mode.id()
		inputs := stream.getCpuInputs()
		for i, item := range items {
			slot := inputs[i*lp.inSize : (i+1)*lp.inSize]
			slot[0] = byte(len(item.key))
			copy(slot[1:33], item.key)
			copy(slot[33:49], item.iv)
			binary.LittleEndian.PutUint32(slot[49:53],
				uint32(len(item.data)))
			copy(slot[aesSlotHdr:], item.data)
		}

		if err := runLaunch(env, stream); err != nil {
			resultChan <- AesResult{Err: err}
			return
		}

		outputs := stream.getCpuOutputs()
		result := AesResult{Slots: make([]AesResultSlot, lp.numSlots)}
		for i, item := range items {
			slot := outputs[i*lp.outSize : (i+1)*lp.outSize]
			outLen := len(item.data)
			if encrypt {
				outLen = mode.sealedLen(outLen)
			} else {
				// Validated before dispatch, cannot fail here
				outLen, _ = mode.openedLen(outLen)
			}
			if slot[0] != aesStatusOK {
				result.Slots[i].Result = failedResult(errors.Errorf(
					"%v message authentication failed in slot %v",
					mode, item.idx))
				continue
			}
			out := make([]byte, outLen)
			copy(out, slot[1:1+outLen])
			result.Slots[i].Result = okResult(out)
		}
		resultChan <- result
	}()
	return resultChan
}
