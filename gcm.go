///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// gcm.go is the SP 800-38D mode: CTR keystream plus a GHASH tag over
// GF(2^128). The 16-byte IV shared with the other modes carries the
// 96-bit nonce in its first 12 bytes; the tag is appended to the
// ciphertext on seal and verified before any plaintext is released on
// open. AAD is not part of this surface and hashes as empty.

import (
	"crypto/subtle"
	"encoding/binary"

	"github.com/pkg/errors"
)

// GcmTagLen is the authentication tag length in bytes.
const GcmTagLen = 16

type gcmMode struct{}

func (gcmMode) String() string { return "GCM" }
func (gcmMode) NeedsIV() bool  { return true }
func (gcmMode) id() byte       { return 5 }

func (gcmMode) sealedLen(n int) int { return n + GcmTagLen }

func (gcmMode) openedLen(n int) (int, error) {
	if n < GcmTagLen || (n-GcmTagLen)%AesBlockLen != 0 {
		return 0, errors.Errorf("GCM ciphertext of %v bytes cannot hold "+
			"block-aligned data plus a %v-byte tag", n, GcmTagLen)
	}
	return n - GcmTagLen, nil
}

func (gcmMode) seal(k *AESKey, iv, src, dst []byte) {
	var h, j0 [AesBlockLen]byte
	aesEncryptBlock(k, h[:])
	copy(j0[:], iv[:12])
	j0[15] = 1

	gcmCTR(k, j0, src, dst[:len(src)])

	tag := gcmTag(k, h, j0, dst[:len(src)])
	copy(dst[len(src):], tag[:])
}

func (gcmMode) open(k *AESKey, iv, src, dst []byte) bool {
	var h, j0 [AesBlockLen]byte
	aesEncryptBlock(k, h[:])
	copy(j0[:], iv[:12])
	j0[15] = 1

	ct := src[:len(src)-GcmTagLen]
	expected := gcmTag(k, h, j0, ct)
	if subtle.ConstantTimeCompare(expected[:], src[len(ct):]) != 1 {
		return false
	}
	gcmCTR(k, j0, ct, dst)
	return true
}

// gcmCTR applies the CTR keystream with 32-bit counter increments,
// starting one past J0. Every keystream block is independent.
func gcmCTR(k *AESKey, j0 [AesBlockLen]byte, src, dst []byte) {
	ctr := j0
	var ks [AesBlockLen]byte
	for i := 0; i < len(src); i += AesBlockLen {
		gcmInc32(&ctr)
		copy(ks[:], ctr[:])
		aesEncryptBlock(k, ks[:])
		xorBytes(dst[i:i+AesBlockLen], src[i:i+AesBlockLen], ks[:])
	}
}

func gcmInc32(ctr *[AesBlockLen]byte) {
	n := binary.BigEndian.Uint32(ctr[12:]) + 1
	binary.BigEndian.PutUint32(ctr[12:], n)
}

// gcmTag computes GHASH over the ciphertext and the length block, then
// masks it with E(J0).
func gcmTag(k *AESKey, h, j0 [AesBlockLen]byte, ct []byte) [GcmTagLen]byte {
	hw := [2]uint64{
		binary.BigEndian.Uint64(h[:8]),
		binary.BigEndian.Uint64(h[8:]),
	}

	var y [2]uint64
	for i := 0; i < len(ct); i += AesBlockLen {
		y[0] ^= binary.BigEndian.Uint64(ct[i:])
		y[1] ^= binary.BigEndian.Uint64(ct[i+8:])
		y = gcmMul(y, hw)
	}
	// Length block: bit lengths of AAD (zero) and ciphertext
	y[1] ^= uint64(len(ct)) * 8
	y = gcmMul(y, hw)

	var tag [GcmTagLen]byte
	binary.BigEndian.PutUint64(tag[:8], y[0])
	binary.BigEndian.PutUint64(tag[8:], y[1])
	mask := j0
	aesEncryptBlock(k, mask[:])
	xorBytes(tag[:], tag[:], mask[:])
	return tag
}

// gcmMul multiplies x by h in GF(2^128) under the GCM bit convention:
// the polynomial runs msb-first and reduces by x^128 + x^7 + x^2 + x + 1,
// which appears as the reflected constant 0xE1 at the top of the field
// element. The GHASH accumulation is inherently sequential per message;
// devices may tree-reduce with precomputed powers of H instead.
func gcmMul(x, h [2]uint64) [2]uint64 {
	var z [2]uint64
	v := h
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = x[0] >> uint(63-i) & 1
		} else {
			bit = x[1] >> uint(127-i) & 1
		}
		if bit != 0 {
			z[0] ^= v[0]
			z[1] ^= v[1]
		}
		lsb := v[1] & 1
		v[1] = v[1]>>1 | v[0]<<63
		v[0] >>= 1
		if lsb != 0 {
			v[0] ^= 0xe100000000000000
		}
	}
	return z
}
