///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// aes_kernel.go is the FIPS 197 block transform and the per-lane cipher
// program. One lane-group owns one whole message: sequential modes chain
// their feedback inside the lane, parallel modes are free to fan out
// further on devices that support it.

import (
	"encoding/binary"
	"log"

	"github.com/pkg/errors"
)

// AesBlockLen is the AES block size in bytes.
const AesBlockLen = 16

func init() {
	laneKernels[kernelAesEnc] = func(constants, in, out []byte) error {
		return aesLane(constants, in, out, true)
	}
	laneKernels[kernelAesDec] = func(constants, in, out []byte) error {
		return aesLane(constants, in, out, false)
	}
}

// aesLane slot layout: keyLen(1) | key(32) | iv(16) | msgLen(4) | data.
// Output slot: status(1) | data. The mode id rides in the launch
// constants. Shape errors abort the launch; authentication failure is a
// per-item outcome reported through the status byte.
func aesLane(constants, in, out []byte, encrypt bool) error {
	mode, err := modeFromID(constants[0])
	if err != nil {
		return err
	}
	keyLen := int(in[0])
	key := in[1 : 1+keyLen]
	iv := in[33:49]
	msgLen := int(binary.LittleEndian.Uint32(in[49:53]))
	if 53+msgLen > len(in) {
		return errors.Errorf("aes slot frames %v bytes but holds %v",
			msgLen, len(in)-53)
	}
	src := in[53 : 53+msgLen]

	k, err := NewAESKey(key)
	if err != nil {
		// Key shape is validated before dispatch
		return err
	}

	if encrypt {
		dst := out[1 : 1+mode.sealedLen(msgLen)]
		mode.seal(k, iv, src, dst)
		out[0] = aesStatusOK
		return nil
	}
	ptLen, err := mode.openedLen(msgLen)
	if err != nil {
		return err
	}
	if ok := mode.open(k, iv, src, out[1:1+ptLen]); !ok {
		// Fail closed: no plaintext escapes on a bad tag
		zeroBytes(out[1 : 1+ptLen])
		out[0] = aesStatusAuthFailed
		return nil
	}
	out[0] = aesStatusOK
	return nil
}

const (
	aesStatusOK         = 0x00
	aesStatusAuthFailed = 0x01
)

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// AESKey is the expanded Rijndael key schedule. It is a pure function of
// the raw key bytes and lives only for the duration of one call.
type AESKey struct {
	rounds int
	words  []uint32
}

// Rounds returns the round count: 10, 12, or 14.
func (k *AESKey) Rounds() int {
	return k.rounds
}

// Words returns the (rounds+1)*4 round-key words.
func (k *AESKey) Words() []uint32 {
	return k.words
}

func rotWord(w uint32) uint32 {
	return w<<8 | w>>24
}

func subWord(w uint32) uint32 {
	return uint32(aesSbox[w>>24])<<24 |
		uint32(aesSbox[w>>16&0xff])<<16 |
		uint32(aesSbox[w>>8&0xff])<<8 |
		uint32(aesSbox[w&0xff])
}

// NewAESKey expands a 16-, 24-, or 32-byte key into its round-key words.
func NewAESKey(raw []byte) (*AESKey, error) {
	switch len(raw) {
	case 16, 24, 32:
	default:
		return nil, validationErrorf("NewAESKey",
			"key must be 16, 24, or 32 bytes, got %v", len(raw))
	}
	nk := len(raw) / 4
	rounds := nk + 6
	if rounds != 10 && rounds != 12 && rounds != 14 {
		// Unreachable given the length check; kept loud rather than
		// silently producing a wrong schedule
		log.Panicf("aes key schedule derived %v rounds from a %v-byte key",
			rounds, len(raw))
	}

	words := make([]uint32, (rounds+1)*4)
	for i := 0; i < nk; i++ {
		words[i] = binary.BigEndian.Uint32(raw[i*4:])
	}
	for i := nk; i < len(words); i++ {
		t := words[i-1]
		switch {
		case i%nk == 0:
			t = subWord(rotWord(t)) ^ uint32(aesRcon[i/nk-1])<<24
		case nk > 6 && i%nk == 4:
			t = subWord(t)
		}
		words[i] = words[i-nk] ^ t
	}
	return &AESKey{rounds: rounds, words: words}, nil
}

// gmul multiplies in GF(2^8) with the AES reduction polynomial 0x11B.
func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// The state is the FIPS 197 column-major 4x4 byte matrix flattened as
// state[4*col+row], which is the block's natural byte order.

func addRoundKey(state *[16]byte, k *AESKey, round int) {
	for c := 0; c < 4; c++ {
		w := k.words[round*4+c]
		state[c*4] ^= byte(w >> 24)
		state[c*4+1] ^= byte(w >> 16)
		state[c*4+2] ^= byte(w >> 8)
		state[c*4+3] ^= byte(w)
	}
}

func subBytes(state *[16]byte) {
	for i, b := range state {
		state[i] = aesSbox[b]
	}
}

func invSubBytes(state *[16]byte) {
	for i, b := range state {
		state[i] = aesInvSbox[b]
	}
}

// shiftRows rotates row r left by r positions.
func shiftRows(state *[16]byte) {
	var t [16]byte
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[c*4+r] = state[((c+r)%4)*4+r]
		}
	}
	*state = t
}

func invShiftRows(state *[16]byte) {
	var t [16]byte
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[((c+r)%4)*4+r] = state[c*4+r]
		}
	}
	*state = t
}

func mixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		col := state[c*4 : c*4+4]
		a0, a1, a2, a3 := col[0], col[1], col[2], col[3]
		col[0] = gmul(a0, 2) ^ gmul(a1, 3) ^ a2 ^ a3
		col[1] = a0 ^ gmul(a1, 2) ^ gmul(a2, 3) ^ a3
		col[2] = a0 ^ a1 ^ gmul(a2, 2) ^ gmul(a3, 3)
		col[3] = gmul(a0, 3) ^ a1 ^ a2 ^ gmul(a3, 2)
	}
}

func invMixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		col := state[c*4 : c*4+4]
		a0, a1, a2, a3 := col[0], col[1], col[2], col[3]
		col[0] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		col[1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		col[2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		col[3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

// aesEncryptBlock transforms one 16-byte block in place.
func aesEncryptBlock(k *AESKey, block []byte) {
	var state [16]byte
	copy(state[:], block)
	addRoundKey(&state, k, 0)
	for round := 1; round < k.rounds; round++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		addRoundKey(&state, k, round)
	}
	subBytes(&state)
	shiftRows(&state)
	addRoundKey(&state, k, k.rounds)
	copy(block, state[:])
}

// aesDecryptBlock inverts aesEncryptBlock in place.
func aesDecryptBlock(k *AESKey, block []byte) {
	var state [16]byte
	copy(state[:], block)
	addRoundKey(&state, k, k.rounds)
	for round := k.rounds - 1; round >= 1; round-- {
		invShiftRows(&state)
		invSubBytes(&state)
		addRoundKey(&state, k, round)
		invMixColumns(&state)
	}
	invShiftRows(&state)
	invSubBytes(&state)
	addRoundKey(&state, k, 0)
	copy(block, state[:])
}
