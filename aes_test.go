///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// FIPS 197 style check: AES-128 of the zero block under the zero key
func TestAesEcbKnownAnswer(t *testing.T) {
	result := AesEncrypt(make([]byte, 16), make([]byte, 16), nil, ECB)
	require.True(t, result.Success)
	require.Equal(t, "66e94bd4ef8a2c3b884cfa59ca342b2e",
		hex.EncodeToString(result.Output))
}

// The block transform must match the standard library for every key size
func TestAesEcbAgainstStdlib(t *testing.T) {
	prng := rand.New(rand.NewSource(20))
	for _, keyLen := range []int{16, 24, 32} {
		key := make([]byte, keyLen)
		prng.Read(key)
		pt := make([]byte, 8*AesBlockLen)
		prng.Read(pt)

		ref, err := aes.NewCipher(key)
		require.NoError(t, err)
		expected := make([]byte, len(pt))
		for i := 0; i < len(pt); i += AesBlockLen {
			ref.Encrypt(expected[i:i+AesBlockLen], pt[i:i+AesBlockLen])
		}

		result := AesEncrypt(pt, key, nil, ECB)
		require.True(t, result.Success)
		require.Equal(t, expected, result.Output, "key length %v", keyLen)
	}
}

// Each chaining mode must match its crypto/cipher counterpart
func TestAesModesAgainstStdlib(t *testing.T) {
	prng := rand.New(rand.NewSource(21))
	key := make([]byte, 32)
	prng.Read(key)
	iv := make([]byte, AesBlockLen)
	prng.Read(iv)
	pt := make([]byte, 20*AesBlockLen)
	prng.Read(pt)

	ref, err := aes.NewCipher(key)
	require.NoError(t, err)

	tests := []struct {
		mode   CipherMode
		stream func(dst, src []byte)
	}{
		{CBC, func(dst, src []byte) {
			cipher.NewCBCEncrypter(ref, iv).CryptBlocks(dst, src)
		}},
		{CFB, func(dst, src []byte) {
			cipher.NewCFBEncrypter(ref, iv).XORKeyStream(dst, src)
		}},
		{OFB, func(dst, src []byte) {
			cipher.NewOFB(ref, iv).XORKeyStream(dst, src)
		}},
		{CTR, func(dst, src []byte) {
			cipher.NewCTR(ref, iv).XORKeyStream(dst, src)
		}},
	}
	for _, tt := range tests {
		expected := make([]byte, len(pt))
		tt.stream(expected, pt)
		result := AesEncrypt(pt, key, iv, tt.mode)
		require.True(t, result.Success, "%v encrypt failed: %v",
			tt.mode, result.Err)
		require.Equal(t, expected, result.Output, "%v", tt.mode)
	}
}

func TestAesRoundTripAllModes(t *testing.T) {
	prng := rand.New(rand.NewSource(22))
	for _, keyLen := range []int{16, 24, 32} {
		key := make([]byte, keyLen)
		prng.Read(key)
		iv := make([]byte, AesBlockLen)
		prng.Read(iv)
		pt := make([]byte, 5*AesBlockLen)
		prng.Read(pt)

		for _, mode := range []CipherMode{ECB, CBC, CFB, OFB, CTR, GCM} {
			enc := AesEncrypt(pt, key, iv, mode)
			require.True(t, enc.Success, "%v/%v encrypt: %v",
				mode, keyLen, enc.Err)
			dec := AesDecrypt(enc.Output, key, iv, mode)
			require.True(t, dec.Success, "%v/%v decrypt: %v",
				mode, keyLen, dec.Err)
			require.Equal(t, pt, dec.Output, "%v/%v", mode, keyLen)
		}
	}
}

func TestAesValidation(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, AesBlockLen)

	// Partial blocks are rejected, not padded
	result := AesEncrypt(make([]byte, 15), key, iv, CBC)
	require.False(t, result.Success)
	require.True(t, IsValidationError(result.Err))

	result = AesEncrypt(make([]byte, 16), make([]byte, 15), iv, CBC)
	require.False(t, result.Success)
	require.True(t, IsValidationError(result.Err))

	// IV-less call in a mode that chains
	result = AesEncrypt(make([]byte, 16), key, nil, CBC)
	require.False(t, result.Success)
	require.True(t, IsValidationError(result.Err))

	// ECB takes no IV, so a nil IV is fine
	result = AesEncrypt(make([]byte, 16), key, nil, ECB)
	require.True(t, result.Success)

	result = AesDecrypt(make([]byte, 17), key, iv, CBC)
	require.False(t, result.Success)
	require.True(t, IsValidationError(result.Err))
}

// Flipping one ciphertext bit in CBC must garble that block and only
// disturb the corresponding plaintext block plus the one after it
func TestAesCbcErrorPropagation(t *testing.T) {
	prng := rand.New(rand.NewSource(23))
	key := make([]byte, 16)
	prng.Read(key)
	iv := make([]byte, AesBlockLen)
	prng.Read(iv)
	pt := make([]byte, 6*AesBlockLen)
	prng.Read(pt)

	enc := AesEncrypt(pt, key, iv, CBC)
	require.True(t, enc.Success)
	enc.Output[2*AesBlockLen] ^= 0x80

	dec := AesDecrypt(enc.Output, key, iv, CBC)
	require.True(t, dec.Success)
	// Blocks 0, 1, and 4, 5 are untouched
	require.Equal(t, pt[:2*AesBlockLen], dec.Output[:2*AesBlockLen])
	require.Equal(t, pt[4*AesBlockLen:], dec.Output[4*AesBlockLen:])
	// Blocks 2 and 3 are not
	require.False(t, bytes.Equal(pt[2*AesBlockLen:4*AesBlockLen],
		dec.Output[2*AesBlockLen:4*AesBlockLen]))
}

// Key expansion must be a pure function of the key bytes
func TestAesKeyScheduleDeterministic(t *testing.T) {
	key := []byte("0123456789abcdef01234567")
	k1, err := NewAESKey(key)
	require.NoError(t, err)
	k2, err := NewAESKey(key)
	require.NoError(t, err)
	require.Equal(t, k1.Rounds(), k2.Rounds())
	require.Equal(t, k1.Words(), k2.Words())
	require.Equal(t, 12, k1.Rounds())
}

func TestAesEncryptChunk(t *testing.T) {
	streamPool, err := NewStreamPool(2, 16384)
	require.NoError(t, err)
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(24))
	const n = 30
	inputs := make([][]byte, n)
	keys := make([][]byte, n)
	ivs := make([][]byte, n)
	for i := range inputs {
		inputs[i] = make([]byte, AesBlockLen*(1+prng.Intn(8)))
		prng.Read(inputs[i])
		keys[i] = make([]byte, []int{16, 24, 32}[i%3])
		prng.Read(keys[i])
		ivs[i] = make([]byte, AesBlockLen)
		prng.Read(ivs[i])
	}

	for _, mode := range []CipherMode{ECB, CBC, CTR, GCM} {
		results, err := AesEncryptChunk(streamPool, inputs, keys, ivs, mode)
		require.NoError(t, err)
		require.Len(t, results, n)
		for i := range results {
			require.True(t, results[i].Success, "%v slot %v: %v",
				mode, i, results[i].Err)
			single := AesEncrypt(inputs[i], keys[i], ivs[i], mode)
			require.Equal(t, single.Output, results[i].Output,
				"%v slot %v differs from single-shot", mode, i)
		}
	}
}

// One malformed item must fail alone; its siblings still encrypt
func TestAesChunkItemIsolation(t *testing.T) {
	streamPool, err := NewStreamPool(2, 16384)
	require.NoError(t, err)
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(25))
	inputs := make([][]byte, 5)
	keys := make([][]byte, 5)
	ivs := make([][]byte, 5)
	for i := range inputs {
		inputs[i] = make([]byte, 2*AesBlockLen)
		prng.Read(inputs[i])
		keys[i] = make([]byte, 16)
		prng.Read(keys[i])
		ivs[i] = make([]byte, AesBlockLen)
		prng.Read(ivs[i])
	}
	keys[2] = keys[2][:15]              // bad key length
	inputs[3] = inputs[3][:AesBlockLen+1] // partial block

	results, err := AesEncryptChunk(streamPool, inputs, keys, ivs, CBC)
	require.NoError(t, err)
	for _, i := range []int{0, 1, 4} {
		require.True(t, results[i].Success, "slot %v: %v", i, results[i].Err)
	}
	for _, i := range []int{2, 3} {
		require.False(t, results[i].Success, "slot %v should have failed", i)
		require.True(t, IsValidationError(results[i].Err))
	}
}

func TestAesDecryptChunkRoundTrip(t *testing.T) {
	streamPool, err := NewStreamPool(2, 16384)
	require.NoError(t, err)
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(26))
	const n = 12
	inputs := make([][]byte, n)
	keys := make([][]byte, n)
	ivs := make([][]byte, n)
	cts := make([][]byte, n)
	for i := range inputs {
		inputs[i] = make([]byte, 4*AesBlockLen)
		prng.Read(inputs[i])
		keys[i] = make([]byte, 32)
		prng.Read(keys[i])
		ivs[i] = make([]byte, AesBlockLen)
		prng.Read(ivs[i])
		enc := AesEncrypt(inputs[i], keys[i], ivs[i], GCM)
		require.True(t, enc.Success)
		cts[i] = enc.Output
	}

	// Corrupt one tag; only that slot may fail
	cts[7][len(cts[7])-1] ^= 1

	results, err := AesDecryptChunk(streamPool, cts, keys, ivs, GCM)
	require.NoError(t, err)
	for i := range results {
		if i == 7 {
			require.False(t, results[i].Success,
				"tampered slot decrypted successfully")
			continue
		}
		require.True(t, results[i].Success, "slot %v: %v",
			i, results[i].Err)
		require.Equal(t, inputs[i], results[i].Output, "slot %v", i)
	}
}
