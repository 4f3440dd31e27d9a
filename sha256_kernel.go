///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// sha256_kernel.go is the FIPS 180-4 SHA-256 lane program. One lane-group
// hashes one whole message: blocks chain sequentially through the running
// state, so block-level parallelism is never attempted. Batching
// parallelizes across messages only.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

func init() {
	laneKernels[kernelSha256] = sha256Lane
}

// sha256Lane reads one framed message slot and writes the 32-byte digest.
func sha256Lane(constants, in, out []byte) error {
	msgLen := int(binary.LittleEndian.Uint32(in[:4]))
	if 4+msgLen > len(in) {
		return errors.Errorf("sha256 slot frames %v bytes but holds %v",
			msgLen, len(in)-4)
	}
	sum := sha256Sum(in[4 : 4+msgLen])
	copy(out, sum[:])
	return nil
}

// sha256Sum hashes one message start to finish.
func sha256Sum(msg []byte) [Digest256Len]byte {
	h := sha256InitH

	// Whole blocks
	n := len(msg)
	for len(msg) >= 64 {
		sha256Compress(&h, msg[:64])
		msg = msg[64:]
	}

	// Final block(s): 0x80, zero fill, 8-byte big-endian bit length
	var pad [128]byte
	copy(pad[:], msg)
	pad[len(msg)] = 0x80
	padLen := 64
	if len(msg) >= 56 {
		padLen = 128
	}
	binary.BigEndian.PutUint64(pad[padLen-8:], uint64(n)*8)
	sha256Compress(&h, pad[:64])
	if padLen == 128 {
		sha256Compress(&h, pad[64:128])
	}

	var out [Digest256Len]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func rotr32(x uint32, n uint) uint32 {
	return x>>n | x<<(32-n)
}

// sha256Compress folds one 64-byte block into the running state. The
// 48 extended schedule words are independent of the round loop and are
// the only part of a block a device may compute in parallel.
func sha256Compress(h *[8]uint32, block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr32(w[i-15], 7) ^ rotr32(w[i-15], 18) ^ w[i-15]>>3
		s1 := rotr32(w[i-2], 17) ^ rotr32(w[i-2], 19) ^ w[i-2]>>10
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d := h[0], h[1], h[2], h[3]
	e, f, g, hh := h[4], h[5], h[6], h[7]
	for i := 0; i < 64; i++ {
		s1 := rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + sha256K[i] + w[i]
		s0 := rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj
		hh, g, f, e, d, c, b, a = g, f, e, d+t1, c, b, a, t1+t2
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}
