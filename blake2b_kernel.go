///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// blake2b_kernel.go is the RFC 7693 BLAKE2b lane program, with the full
// 12-round schedule over the SIGMA permutation table and the keyed-mode
// prefix block.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const blake2bBlockLen = 128

func init() {
	laneKernels[kernelBlake2b] = blake2bLane
}

// blake2bLane slot layout: hashSize(1) | keyLen(1) | key(64) | msgLen(4) |
// message. The output slot always receives the full 64-byte state; the
// dispatcher truncates to hashSize.
func blake2bLane(constants, in, out []byte) error {
	hashSize := int(in[0])
	keyLen := int(in[1])
	key := in[2 : 2+keyLen]
	msgLen := int(binary.LittleEndian.Uint32(in[66:70]))
	if 70+msgLen > len(in) {
		return errors.Errorf("blake2b slot frames %v bytes but holds %v",
			msgLen, len(in)-70)
	}
	h := blake2bSum(in[70:70+msgLen], key, hashSize)
	for i, w := range h {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return nil
}

// blake2bSum runs the full hash and returns the final 8-word state. The
// caller keeps the first hashSize bytes of its little-endian form.
// Preconditions (checked by the dispatcher): 1 <= hashSize <= 64,
// len(key) <= 64.
func blake2bSum(msg, key []byte, hashSize int) [8]uint64 {
	h := blake2bIV
	h[0] ^= 0x01010000 ^ uint64(len(key))<<8 ^ uint64(hashSize)

	// A key becomes a full prefix block
	var t uint64
	if len(key) > 0 {
		var block [blake2bBlockLen]byte
		copy(block[:], key)
		t += blake2bBlockLen
		if len(msg) == 0 {
			blake2bCompress(&h, block[:], t, true)
			return h
		}
		blake2bCompress(&h, block[:], t, false)
	}

	// All blocks before the last run with the running byte offset; the
	// last block is zero-padded and flagged final
	for len(msg) > blake2bBlockLen {
		t += blake2bBlockLen
		blake2bCompress(&h, msg[:blake2bBlockLen], t, false)
		msg = msg[blake2bBlockLen:]
	}
	var block [blake2bBlockLen]byte
	copy(block[:], msg)
	t += uint64(len(msg))
	blake2bCompress(&h, block[:], t, true)
	return h
}

func rotr64(x uint64, n uint) uint64 {
	return x>>n | x<<(64-n)
}

// blake2bCompress is the F function: 12 rounds of G over the 16-word
// local state, message words fed per the SIGMA schedule.
func blake2bCompress(h *[8]uint64, block []byte, t uint64, final bool) {
	var m [16]uint64
	for i := range m {
		m[i] = binary.LittleEndian.Uint64(block[i*8:])
	}

	var v [16]uint64
	copy(v[:8], h[:])
	copy(v[8:], blake2bIV[:])
	v[12] ^= t
	// The high counter word stays zero: slot-framed messages are far
	// below 2^64 bytes
	if final {
		v[14] = ^v[14]
	}

	g := func(a, b, c, d int, x, y uint64) {
		v[a] = v[a] + v[b] + x
		v[d] = rotr64(v[d]^v[a], 32)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 24)
		v[a] = v[a] + v[b] + y
		v[d] = rotr64(v[d]^v[a], 16)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 63)
	}

	for round := 0; round < 12; round++ {
		s := &blake2bSigma[round]
		g(0, 4, 8, 12, m[s[0]], m[s[1]])
		g(1, 5, 9, 13, m[s[2]], m[s[3]])
		g(2, 6, 10, 14, m[s[4]], m[s[5]])
		g(3, 7, 11, 15, m[s[6]], m[s[7]])
		g(0, 5, 10, 15, m[s[8]], m[s[9]])
		g(1, 6, 11, 12, m[s[10]], m[s[11]])
		g(2, 7, 8, 13, m[s[12]], m[s[13]])
		g(3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	for i := range h {
		h[i] ^= v[i] ^ v[i+8]
	}
}
