///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Byte layout must be word-major and little-endian within each word
func TestDigest256ByteMapping(t *testing.T) {
	d := Digest256{0x0807060504030201, 0x100f0e0d0c0b0a09, 0, 0}
	b := d.ToBytes()
	for i := 0; i < 16; i++ {
		if b[i] != byte(i+1) {
			t.Fatalf("byte %v: expected %#x, got %#x", i, i+1, b[i])
		}
	}
}

func TestDigest256RoundTrip(t *testing.T) {
	prng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		in := make([]byte, Digest256Len)
		prng.Read(in)
		d, err := Digest256FromBytes(in)
		require.NoError(t, err)
		require.True(t, bytes.Equal(in, d.ToBytes()))
	}
}

func TestDigest512RoundTrip(t *testing.T) {
	prng := rand.New(rand.NewSource(43))
	in := make([]byte, Digest512Len)
	prng.Read(in)
	d, err := Digest512FromBytes(in)
	require.NoError(t, err)
	require.Equal(t, in, d.ToBytes())
}

func TestDigestFromBytesWrongLength(t *testing.T) {
	_, err := Digest256FromBytes(make([]byte, 31))
	require.Error(t, err)
	_, err = Digest256FromBytes(make([]byte, 33))
	require.Error(t, err)
	_, err = Digest512FromBytes(make([]byte, 63))
	require.Error(t, err)
}

// A failed result must be recognizable from the flag alone
func TestOperationResultStates(t *testing.T) {
	ok := okResult([]byte{1, 2, 3})
	require.True(t, ok.Success)
	require.NoError(t, ok.Err)

	bad := failedResult(validationErrorf("test", "broken"))
	require.False(t, bad.Success)
	require.Error(t, bad.Err)
	require.Empty(t, bad.Output)
}
