///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// aes_modes.go defines the mode of operation as a sum type: each mode
// value carries its own per-block dependency policy, so the lane program
// runs whatever structure the mode dictates instead of branching on a tag
// inside the block loop. ECB, CTR, and CBC-decrypt are independent per
// block; CBC-encrypt, CFB, and OFB chain.

import "github.com/pkg/errors"

// CipherMode selects the block-cipher mode of operation. The package
// values ECB, CBC, CFB, OFB, CTR, and GCM are the only implementations.
type CipherMode interface {
	String() string
	// NeedsIV reports whether the mode requires a 16-byte IV
	NeedsIV() bool

	// id is the mode's wire tag inside a launch's constants region
	id() byte
	// sealedLen is the ciphertext length produced for ptLen bytes
	sealedLen(ptLen int) int
	// openedLen is the plaintext length recovered from ctLen bytes
	openedLen(ctLen int) (int, error)
	// seal encrypts src into dst (len(dst) == sealedLen(len(src)))
	seal(k *AESKey, iv, src, dst []byte)
	// open decrypts src into dst, reporting false on tag mismatch
	open(k *AESKey, iv, src, dst []byte) bool
}

// Mode values. Mutually exclusive by construction.
var (
	ECB CipherMode = ecbMode{}
	CBC CipherMode = cbcMode{}
	CFB CipherMode = cfbMode{}
	OFB CipherMode = ofbMode{}
	CTR CipherMode = ctrMode{}
	GCM CipherMode = gcmMode{}
)

func modeFromID(id byte) (CipherMode, error) {
	modes := []CipherMode{ECB, CBC, CFB, OFB, CTR, GCM}
	if int(id) >= len(modes) {
		return nil, errors.Errorf("unknown cipher mode id %v", id)
	}
	return modes[id], nil
}

func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

func blockAlignedLen(n int) (int, error) {
	if n%AesBlockLen != 0 {
		return 0, errors.Errorf("length %v is not a multiple of the "+
			"%v-byte block size", n, AesBlockLen)
	}
	return n, nil
}

// ecbMode: every block independent in both directions.
type ecbMode struct{}

func (ecbMode) String() string              { return "ECB" }
func (ecbMode) NeedsIV() bool               { return false }
func (ecbMode) id() byte                    { return 0 }
func (ecbMode) sealedLen(n int) int         { return n }
func (ecbMode) openedLen(n int) (int, error) { return blockAlignedLen(n) }

func (ecbMode) seal(k *AESKey, iv, src, dst []byte) {
	// Each block is independent; a device may assign one lane per block
	for i := 0; i < len(src); i += AesBlockLen {
		copy(dst[i:i+AesBlockLen], src[i:i+AesBlockLen])
		aesEncryptBlock(k, dst[i:i+AesBlockLen])
	}
}

func (ecbMode) open(k *AESKey, iv, src, dst []byte) bool {
	for i := 0; i < len(src); i += AesBlockLen {
		copy(dst[i:i+AesBlockLen], src[i:i+AesBlockLen])
		aesDecryptBlock(k, dst[i:i+AesBlockLen])
	}
	return true
}

// cbcMode: encrypt chains ciphertext into the next plaintext; decrypt is
// independent per block since every input is already at hand.
type cbcMode struct{}

func (cbcMode) String() string              { return "CBC" }
func (cbcMode) NeedsIV() bool               { return true }
func (cbcMode) id() byte                    { return 1 }
func (cbcMode) sealedLen(n int) int         { return n }
func (cbcMode) openedLen(n int) (int, error) { return blockAlignedLen(n) }

func (cbcMode) seal(k *AESKey, iv, src, dst []byte) {
	prev := iv
	for i := 0; i < len(src); i += AesBlockLen {
		block := dst[i : i+AesBlockLen]
		xorBytes(block, src[i:i+AesBlockLen], prev)
		aesEncryptBlock(k, block)
		prev = block
	}
}

func (cbcMode) open(k *AESKey, iv, src, dst []byte) bool {
	// No feedback on decrypt: block i only reads ciphertext i-1
	for i := 0; i < len(src); i += AesBlockLen {
		block := dst[i : i+AesBlockLen]
		copy(block, src[i:i+AesBlockLen])
		aesDecryptBlock(k, block)
		prev := iv
		if i >= AesBlockLen {
			prev = src[i-AesBlockLen : i]
		}
		xorBytes(block, block, prev)
	}
	return true
}

// cfbMode: full-block cipher feedback; both directions chain through the
// previous ciphertext block.
type cfbMode struct{}

func (cfbMode) String() string              { return "CFB" }
func (cfbMode) NeedsIV() bool               { return true }
func (cfbMode) id() byte                    { return 2 }
func (cfbMode) sealedLen(n int) int         { return n }
func (cfbMode) openedLen(n int) (int, error) { return blockAlignedLen(n) }

func (cfbMode) seal(k *AESKey, iv, src, dst []byte) {
	var ks [AesBlockLen]byte
	prev := iv
	for i := 0; i < len(src); i += AesBlockLen {
		copy(ks[:], prev)
		aesEncryptBlock(k, ks[:])
		block := dst[i : i+AesBlockLen]
		xorBytes(block, src[i:i+AesBlockLen], ks[:])
		prev = block
	}
}

func (cfbMode) open(k *AESKey, iv, src, dst []byte) bool {
	var ks [AesBlockLen]byte
	prev := iv
	for i := 0; i < len(src); i += AesBlockLen {
		copy(ks[:], prev)
		aesEncryptBlock(k, ks[:])
		xorBytes(dst[i:i+AesBlockLen], src[i:i+AesBlockLen], ks[:])
		prev = src[i : i+AesBlockLen]
	}
	return true
}

// ofbMode: the keystream chains through itself; identical both ways.
type ofbMode struct{}

func (ofbMode) String() string              { return "OFB" }
func (ofbMode) NeedsIV() bool               { return true }
func (ofbMode) id() byte                    { return 3 }
func (ofbMode) sealedLen(n int) int         { return n }
func (ofbMode) openedLen(n int) (int, error) { return blockAlignedLen(n) }

func (m ofbMode) seal(k *AESKey, iv, src, dst []byte) {
	var ks [AesBlockLen]byte
	copy(ks[:], iv)
	for i := 0; i < len(src); i += AesBlockLen {
		aesEncryptBlock(k, ks[:])
		xorBytes(dst[i:i+AesBlockLen], src[i:i+AesBlockLen], ks[:])
	}
}

func (m ofbMode) open(k *AESKey, iv, src, dst []byte) bool {
	m.seal(k, iv, src, dst)
	return true
}

// ctrMode: keystream block i is E(counter+i); fully parallel, XOR is its
// own inverse. The IV is the initial 128-bit big-endian counter.
type ctrMode struct{}

func (ctrMode) String() string              { return "CTR" }
func (ctrMode) NeedsIV() bool               { return true }
func (ctrMode) id() byte                    { return 4 }
func (ctrMode) sealedLen(n int) int         { return n }
func (ctrMode) openedLen(n int) (int, error) { return blockAlignedLen(n) }

func (ctrMode) seal(k *AESKey, iv, src, dst []byte) {
	var ctr, ks [AesBlockLen]byte
	copy(ctr[:], iv)
	for i := 0; i < len(src); i += AesBlockLen {
		copy(ks[:], ctr[:])
		aesEncryptBlock(k, ks[:])
		xorBytes(dst[i:i+AesBlockLen], src[i:i+AesBlockLen], ks[:])
		incCounter(ctr[:])
	}
}

func (m ctrMode) open(k *AESKey, iv, src, dst []byte) bool {
	m.seal(k, iv, src, dst)
	return true
}

// incCounter increments a big-endian counter block.
func incCounter(ctr []byte) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] != 0 {
			return
		}
	}
}
