///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import (
	"crypto/sha256"
	"math/rand"
	"testing"
)

func TestSha256KnownAnswers(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb924" +
			"27ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223" +
			"b00361a396177a9cb410ff61f20015ad"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"248d6a61d20638b8e5c026930c3e6039" +
				"a33ce45964ff2167f6ecedd419db06c1"},
	}
	for _, tt := range tests {
		d := Sha256([]byte(tt.in))
		if d.Hex() != tt.out {
			t.Errorf("Sha256(%q): expected %v, got %v",
				tt.in, tt.out, d.Hex())
		}
	}
}

// Compare against the standard library across lengths that exercise both
// padding branches and multi-block messages
func TestSha256AgainstStdlib(t *testing.T) {
	prng := rand.New(rand.NewSource(5))
	for _, n := range []int{1, 55, 56, 63, 64, 65, 119, 120, 128, 1000} {
		msg := make([]byte, n)
		prng.Read(msg)
		expected := sha256.Sum256(msg)
		actual := Sha256(msg).ToBytes()
		for i := range expected {
			if expected[i] != actual[i] {
				t.Fatalf("length %v: digest mismatch at byte %v", n, i)
			}
		}
	}
}

// The batch path must agree with the single-message path for every slot,
// in order, including batches bigger than one launch
func TestSha256Chunk(t *testing.T) {
	const numSlots = 32
	// Small enough that the batch needs more than one launch
	streamPool, err := NewStreamPool(2, 4096)
	if err != nil {
		t.Fatal(err)
	}
	defer streamPool.Destroy()

	prng := rand.New(rand.NewSource(6))
	inputs := make([][]byte, numSlots*3+1)
	for i := range inputs {
		// Mixed lengths so slots share a stride but not a length
		msg := make([]byte, prng.Intn(200))
		prng.Read(msg)
		inputs[i] = msg
	}

	digests, err := Sha256Chunk(streamPool, inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(digests) != len(inputs) {
		t.Fatalf("expected %v digests, got %v", len(inputs), len(digests))
	}
	for i := range inputs {
		if digests[i] != Sha256(inputs[i]) {
			t.Errorf("slot %v: batch digest differs from single-shot", i)
		}
	}
}

func TestSha256ChunkEmptyBatch(t *testing.T) {
	streamPool, err := NewStreamPool(1, 1024)
	if err != nil {
		t.Fatal(err)
	}
	defer streamPool.Destroy()
	digests, err := Sha256Chunk(streamPool, nil)
	if err != nil {
		t.Fatal(err)
	}
	if digests != nil {
		t.Fatalf("expected no digests for an empty batch, got %v",
			len(digests))
	}
}
