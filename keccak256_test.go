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

	"golang.org/x/crypto/sha3"
)

// Keccak-256 uses the pre-standard 0x01 padding, not the SHA-3 0x06; the
// empty-input digest tells the two apart immediately
func TestKeccak256KnownAnswers(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0" +
			"e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667" +
			"c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tt := range tests {
		d := Keccak256([]byte(tt.in))
		if d.Hex() != tt.out {
			t.Errorf("Keccak256(%q): expected %v, got %v",
				tt.in, tt.out, d.Hex())
		}
	}
}

// Compare against x/crypto's legacy Keccak across rate boundaries
func TestKeccak256AgainstXCrypto(t *testing.T) {
	prng := rand.New(rand.NewSource(7))
	for _, n := range []int{1, 64, 135, 136, 137, 271, 272, 1000} {
		msg := make([]byte, n)
		prng.Read(msg)
		ref := sha3.NewLegacyKeccak256()
		ref.Write(msg)
		expected := ref.Sum(nil)
		if !bytes.Equal(expected, Keccak256(msg).ToBytes()) {
			t.Fatalf("length %v: digest differs from reference", n)
		}
	}
}

func TestKeccak256Chunk(t *testing.T) {
	streamPool, err := NewStreamPool(2, 8192)
	if err != nil {
		t.Fatal(err)
	}
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(8))
	inputs := make([][]byte, 50)
	for i := range inputs {
		msg := make([]byte, prng.Intn(300))
		prng.Read(msg)
		inputs[i] = msg
	}

	digests, err := Keccak256Chunk(streamPool, inputs)
	if err != nil {
		t.Fatal(err)
	}
	for i := range inputs {
		if digests[i] != Keccak256(inputs[i]) {
			t.Errorf("slot %v: batch digest differs from single-shot", i)
		}
	}
}
