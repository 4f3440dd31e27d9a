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

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/salsa20"
)

// x/crypto's Salsa20 always starts at counter zero
func TestSalsa20AgainstXCrypto(t *testing.T) {
	prng := rand.New(rand.NewSource(50))
	var key [32]byte
	prng.Read(key[:])
	nonce := make([]byte, Salsa20NonceLen)
	prng.Read(nonce)

	for _, n := range []int{1, 63, 64, 65, 200, 777} {
		msg := make([]byte, n)
		prng.Read(msg)

		expected := make([]byte, n)
		salsa20.XORKeyStream(expected, msg, nonce, &key)

		actual, err := Salsa20(msg, key[:], nonce, 0)
		require.NoError(t, err)
		require.Equal(t, expected, actual, "length %v", n)
	}
}

func TestSalsa20RoundTrip(t *testing.T) {
	prng := rand.New(rand.NewSource(51))
	key := make([]byte, Salsa20KeyLen)
	prng.Read(key)
	nonce := make([]byte, Salsa20NonceLen)
	prng.Read(nonce)
	msg := make([]byte, 450)
	prng.Read(msg)

	ct, err := Salsa20(msg, key, nonce, 12)
	require.NoError(t, err)
	pt, err := Salsa20(ct, key, nonce, 12)
	require.NoError(t, err)
	require.Equal(t, msg, pt)
}

// A nonzero starting counter is the same stream shifted by whole blocks
func TestSalsa20CounterOffset(t *testing.T) {
	prng := rand.New(rand.NewSource(52))
	key := make([]byte, Salsa20KeyLen)
	prng.Read(key)
	nonce := make([]byte, Salsa20NonceLen)
	prng.Read(nonce)

	whole, err := Salsa20(make([]byte, 4*salsaBlockLen), key, nonce, 0)
	require.NoError(t, err)
	tail, err := Salsa20(make([]byte, 2*salsaBlockLen), key, nonce, 2)
	require.NoError(t, err)
	require.Equal(t, whole[2*salsaBlockLen:], tail)
}

func TestSalsa20Validation(t *testing.T) {
	_, err := Salsa20([]byte("x"), make([]byte, 16), make([]byte, 8), 0)
	require.True(t, IsValidationError(err))
	_, err = Salsa20([]byte("x"), make([]byte, 32), make([]byte, 12), 0)
	require.True(t, IsValidationError(err))
}

func TestSalsa20Chunk(t *testing.T) {
	streamPool, err := NewStreamPool(2, 8192)
	require.NoError(t, err)
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(53))
	const n = 20
	inputs := make([][]byte, n)
	keys := make([][]byte, n)
	nonces := make([][]byte, n)
	for i := range inputs {
		inputs[i] = make([]byte, prng.Intn(250))
		prng.Read(inputs[i])
		keys[i] = make([]byte, Salsa20KeyLen)
		prng.Read(keys[i])
		nonces[i] = make([]byte, Salsa20NonceLen)
		prng.Read(nonces[i])
	}

	results, err := Salsa20Chunk(streamPool, inputs, keys, nonces, 9)
	require.NoError(t, err)
	require.Len(t, results, n)
	for i := range results {
		require.True(t, results[i].Success, "slot %v: %v",
			i, results[i].Err)
		expected, err := Salsa20(inputs[i], keys[i], nonces[i], 9)
		require.NoError(t, err)
		require.Equal(t, expected, results[i].Output, "slot %v", i)
	}
}
