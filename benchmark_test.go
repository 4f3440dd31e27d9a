///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import (
	"math/rand"
	"testing"
)

// Compares the single-message host path against the batched device path.
// On the emulated device the batch mostly measures dispatch overhead; with
// -tags gpu it measures the real transfer/compute trade.

const benchMsgLen = 1024

func benchInputs(n int) [][]byte {
	prng := rand.New(rand.NewSource(99))
	inputs := make([][]byte, n)
	for i := range inputs {
		inputs[i] = make([]byte, benchMsgLen)
		prng.Read(inputs[i])
	}
	return inputs
}

func BenchmarkSha256(b *testing.B) {
	inputs := benchInputs(1)
	b.SetBytes(benchMsgLen)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sha256(inputs[0])
	}
}

func BenchmarkSha256Chunk(b *testing.B) {
	const batch = 256
	streamPool, err := NewStreamPool(2, launchParams{
		inSize:  4 + benchMsgLen,
		outSize: Digest256Len,
	}.streamSizeContaining(batch))
	if err != nil {
		b.Fatal(err)
	}
	defer streamPool.Destroy()
	inputs := benchInputs(batch)
	b.SetBytes(benchMsgLen * batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Sha256Chunk(streamPool, inputs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBlake2bChunk(b *testing.B) {
	const batch = 256
	streamPool, err := NewStreamPool(2, launchParams{
		inSize:  blake2bSlotHdr + benchMsgLen,
		outSize: Digest512Len,
	}.streamSizeContaining(batch))
	if err != nil {
		b.Fatal(err)
	}
	defer streamPool.Destroy()
	inputs := benchInputs(batch)
	b.SetBytes(benchMsgLen * batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Blake2bChunk(streamPool, inputs, nil, 64); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAesCtrChunk(b *testing.B) {
	const batch = 128
	prng := rand.New(rand.NewSource(100))
	inputs := benchInputs(batch)
	keys := make([][]byte, batch)
	ivs := make([][]byte, batch)
	for i := range keys {
		keys[i] = make([]byte, 32)
		prng.Read(keys[i])
		ivs[i] = make([]byte, AesBlockLen)
		prng.Read(ivs[i])
	}
	streamPool, err := NewStreamPool(2, launchParams{
		constSize: 1,
		inSize:    aesSlotHdr + benchMsgLen,
		outSize:   1 + benchMsgLen,
	}.streamSizeContaining(batch))
	if err != nil {
		b.Fatal(err)
	}
	defer streamPool.Destroy()
	b.SetBytes(benchMsgLen * batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := AesEncryptChunk(streamPool, inputs, keys, ivs,
			CTR); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkChaCha20Chunk(b *testing.B) {
	const batch = 128
	prng := rand.New(rand.NewSource(101))
	inputs := benchInputs(batch)
	keys := make([][]byte, batch)
	nonces := make([][]byte, batch)
	for i := range keys {
		keys[i] = make([]byte, ChaCha20KeyLen)
		prng.Read(keys[i])
		nonces[i] = make([]byte, ChaCha20NonceLen)
		prng.Read(nonces[i])
	}
	streamPool, err := NewStreamPool(2, launchParams{
		inSize:  chachaSlotHdr + benchMsgLen,
		outSize: benchMsgLen,
	}.streamSizeContaining(batch))
	if err != nil {
		b.Fatal(err)
	}
	defer streamPool.Destroy()
	b.SetBytes(benchMsgLen * batch)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ChaCha20Chunk(streamPool, inputs, keys, nonces,
			0); err != nil {
			b.Fatal(err)
		}
	}
}
