// Package savecrypt implements the reciprocal cipher and chunk shuffle used
// by the handheld games' Pokémon save blocks.
//
// A block is little-endian throughout: one 32-bit personality value (pid),
// one unused 16-bit word, a 16-bit checksum, then 64 encrypted 16-bit data
// words forming four shuffleable 16-word chunks, optionally followed by extra
// 16-bit words encrypted under a second keystream seeded from the pid. The
// pid, unused and checksum words are never encrypted.
package savecrypt

import (
	"encoding/binary"
	"fmt"

	"github.com/mossdeep/dexkit/core/errors"
)

const (
	headWords  = 2  // unused + checksum, in front of the data words
	dataWords  = 64 // the shuffleable payload
	chunkWords = 16

	// MinBlockSize is the smallest well-formed block: the pid, the two head
	// words, and the full 64-word payload.
	MinBlockSize = 4 + 2*(headWords+dataWords)
)

// shuffleOrders enumerates all permutations of the four chunks in
// lexicographic order; index 0 is the identity ordering.
var shuffleOrders = enumerateOrders()

func enumerateOrders() [][4]int {
	orders := make([][4]int, 0, 24)
	var perm [4]int
	var used [4]bool
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(perm) {
			orders = append(orders, perm)
			return
		}
		for v := 0; v < len(perm); v++ {
			if used[v] {
				continue
			}
			used[v] = true
			perm[depth] = v
			walk(depth + 1)
			used[v] = false
		}
	}
	walk(0)
	return orders
}

// ShuffleIndex derives which of the 24 chunk orderings a pid selects.
func ShuffleIndex(pid uint32) int {
	return int((pid>>13)&0x1F) % 24
}

// Decrypt converts an on-disk encrypted block into its plain form: the
// keystreams are removed first, then the chunks are moved back to their
// logical order. Applying it to an already-plain block corrupts the data.
func Decrypt(blob []byte) ([]byte, error) {
	pid, words, err := unpack(blob)
	if err != nil {
		return nil, err
	}
	reciprocalCrypt(pid, words)
	words = shuffleChunks(pid, words, true)
	return pack(pid, words), nil
}

// Encrypt converts a plain block into the on-disk encrypted form: the chunks
// are shuffled first, then the keystreams are applied. Decrypt(Encrypt(b))
// and Encrypt(Decrypt(b)) both return b for any well-formed block.
func Encrypt(blob []byte) ([]byte, error) {
	pid, words, err := unpack(blob)
	if err != nil {
		return nil, err
	}
	words = shuffleChunks(pid, words, false)
	reciprocalCrypt(pid, words)
	return pack(pid, words), nil
}

// reciprocalCrypt XORs the encryptable words with the PRNG keystreams, in
// place. The data words use a stream seeded from the checksum word; extra
// words past the payload use a separate stream seeded from the pid. XOR with
// the same keystream twice is identity, so the operation is its own inverse
// as long as the seed words are untouched (they are never encrypted).
func reciprocalCrypt(pid uint32, words []uint16) {
	ks := keystream{seed: uint32(words[1])}
	for i := headWords; i < headWords+dataWords; i++ {
		words[i] ^= ks.next()
	}
	if len(words) > headWords+dataWords {
		ks = keystream{seed: pid}
		for i := headWords + dataWords; i < len(words); i++ {
			words[i] ^= ks.next()
		}
	}
}

// shuffleChunks returns the words with the four payload chunks reordered
// according to the pid's shuffle order. The head words and any extra words
// pass through unchanged. reverse inverts the permutation, which undoes a
// forward shuffle.
func shuffleChunks(pid uint32, words []uint16, reverse bool) []uint16 {
	order := shuffleOrders[ShuffleIndex(pid)]
	if reverse {
		var inverted [4]int
		for pos, chunk := range order {
			inverted[chunk] = pos
		}
		order = inverted
	}

	shuffled := make([]uint16, 0, len(words))
	shuffled = append(shuffled, words[:headWords]...)
	for _, chunk := range order {
		start := headWords + chunk*chunkWords
		shuffled = append(shuffled, words[start:start+chunkWords]...)
	}
	shuffled = append(shuffled, words[headWords+dataWords:]...)
	return shuffled
}

// unpack splits a raw blob into the pid and the trailing 16-bit words.
func unpack(blob []byte) (pid uint32, words []uint16, err error) {
	if len(blob)%2 != 0 {
		return 0, nil, errors.NewFormat("save block",
			fmt.Sprintf("length %d is not 4 plus a whole number of 16-bit words", len(blob)))
	}
	if len(blob) < MinBlockSize {
		return 0, nil, errors.NewFormat("save block",
			fmt.Sprintf("length %d is shorter than the %d-byte block layout", len(blob), MinBlockSize))
	}
	pid = binary.LittleEndian.Uint32(blob)
	words = make([]uint16, (len(blob)-4)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(blob[4+2*i:])
	}
	return pid, words, nil
}

// pack is the inverse of unpack.
func pack(pid uint32, words []uint16) []byte {
	blob := make([]byte, 4+2*len(words))
	binary.LittleEndian.PutUint32(blob, pid)
	for i, w := range words {
		binary.LittleEndian.PutUint16(blob[4+2*i:], w)
	}
	return blob
}
