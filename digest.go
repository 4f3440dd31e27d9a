///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// digest.go contains the fixed-width digest containers shared by the hash
// kernels and the per-call result type shared by the cipher ops.

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
)

const (
	// Digest256Len is the byte length of a 256-bit digest
	Digest256Len = 32
	// Digest512Len is the byte length of a 512-bit digest
	Digest512Len = 64
)

// Digest256 is a 256-bit hash output held as 4 64-bit words. Byte i of
// word w maps to (word >> (8*i)) & 0xFF, so the serialized form is
// word-major with each word little-endian.
type Digest256 [4]uint64

// Digest512 is a 512-bit hash output held as 8 64-bit words, with the
// same word-major little-endian byte mapping as Digest256.
type Digest512 [8]uint64

// ToBytes serializes the digest into its canonical 32-byte form.
func (d Digest256) ToBytes() []byte {
	out := make([]byte, Digest256Len)
	for i, w := range d {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// Hex returns the lowercase hex encoding of the canonical byte form.
func (d Digest256) Hex() string {
	return hex.EncodeToString(d.ToBytes())
}

// Digest256FromBytes packs exactly 32 bytes into a Digest256. The
// round-trip with ToBytes is exact.
func Digest256FromBytes(b []byte) (Digest256, error) {
	var d Digest256
	if len(b) != Digest256Len {
		return d, errors.Errorf(
			"Digest256 requires %v bytes, got %v", Digest256Len, len(b))
	}
	for i := range d {
		d[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return d, nil
}

// ToBytes serializes the digest into its canonical 64-byte form.
func (d Digest512) ToBytes() []byte {
	out := make([]byte, Digest512Len)
	for i, w := range d {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// Hex returns the lowercase hex encoding of the canonical byte form.
func (d Digest512) Hex() string {
	return hex.EncodeToString(d.ToBytes())
}

// Digest512FromBytes packs exactly 64 bytes into a Digest512.
func Digest512FromBytes(b []byte) (Digest512, error) {
	var d Digest512
	if len(b) != Digest512Len {
		return d, errors.Errorf(
			"Digest512 requires %v bytes, got %v", Digest512Len, len(b))
	}
	for i := range d {
		d[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return d, nil
}

// OperationResult is the outcome of one encrypt/decrypt call. Exactly one
// of the two states holds: Success with a non-nil Output, or !Success with
// an empty Output and a non-nil Err. Ownership of Output transfers to the
// caller.
type OperationResult struct {
	Output  []byte
	Success bool
	Err     error
}

// failedResult builds the failure arm of an OperationResult. The output
// buffer stays empty so callers can trust the Success flag alone.
func failedResult(err error) OperationResult {
	return OperationResult{Success: false, Err: err}
}

func okResult(out []byte) OperationResult {
	if out == nil {
		out = []byte{}
	}
	return OperationResult{Output: out, Success: true}
}
