///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

// keccak_kernel.go is the Keccak-256 lane program: the Ethereum variant
// of the sponge (pad 0x01, rate 136 bytes, capacity 512 bits, 32-byte
// output) over the full 24-round Keccak-f[1600] permutation.

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const keccakRate = 136

func init() {
	laneKernels[kernelKeccak256] = keccak256Lane
}

func keccak256Lane(constants, in, out []byte) error {
	msgLen := int(binary.LittleEndian.Uint32(in[:4]))
	if 4+msgLen > len(in) {
		return errors.Errorf("keccak256 slot frames %v bytes but holds %v",
			msgLen, len(in)-4)
	}
	sum := keccak256Sum(in[4 : 4+msgLen])
	copy(out, sum[:])
	return nil
}

// keccak256Sum absorbs the whole message and squeezes a 32-byte digest.
// The requested output is under one rate, so a single squeeze suffices.
func keccak256Sum(msg []byte) [Digest256Len]byte {
	var state [25]uint64

	// Absorb whole rate-sized blocks
	for len(msg) >= keccakRate {
		keccakAbsorb(&state, msg[:keccakRate])
		keccakF1600(&state)
		msg = msg[keccakRate:]
	}

	// Last block: pad10*1 with the 0x01 domain byte
	var block [keccakRate]byte
	copy(block[:], msg)
	block[len(msg)] = 0x01
	block[keccakRate-1] |= 0x80
	keccakAbsorb(&state, block[:])
	keccakF1600(&state)

	var out [Digest256Len]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], state[i])
	}
	return out
}

func keccakAbsorb(state *[25]uint64, block []byte) {
	for i := 0; i < keccakRate/8; i++ {
		state[i] ^= binary.LittleEndian.Uint64(block[i*8:])
	}
}

func rotl64(x uint64, n uint) uint64 {
	return x<<n | x>>(64-n)
}

// keccakF1600 applies the 24-round permutation: theta, rho and pi walked
// lane by lane, chi row by row, iota from the round-constant table.
func keccakF1600(state *[25]uint64) {
	var bc [5]uint64
	for round := 0; round < 24; round++ {
		// Theta
		for i := 0; i < 5; i++ {
			bc[i] = state[i] ^ state[i+5] ^ state[i+10] ^
				state[i+15] ^ state[i+20]
		}
		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ rotl64(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				state[j+i] ^= t
			}
		}

		// Rho and pi
		t := state[1]
		for i := 0; i < 24; i++ {
			j := keccakPiln[i]
			bc[0] = state[j]
			state[j] = rotl64(t, keccakRotc[i])
			t = bc[0]
		}

		// Chi
		for j := 0; j < 25; j += 5 {
			for i := 0; i < 5; i++ {
				bc[i] = state[j+i]
			}
			for i := 0; i < 5; i++ {
				state[j+i] ^= ^bc[(i+1)%5] & bc[(i+2)%5]
			}
		}

		// Iota
		state[0] ^= keccakRC[round]
	}
}
