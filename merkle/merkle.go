// Package merkle computes the two Merkle roots a block header carries
// (spec.md §4.7): one over accepted transaction hashes, one over rejected
// transaction hashes.
//
// Grounded on core/block.go's ComputeTxRoot (same length-prefix-then-hash
// leaf encoding, using crypto.HashBytes), generalized from a single
// concatenated digest to an actual binary tree so two transaction sets of
// different sizes produce roots whose internal structure, not just their
// leaf set, is auditable.
package merkle

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/tolelom/ledgerd/crypto"
)

// emptyRoot is the root of a tree with no leaves, matching the teacher's
// convention of hashing a sentinel rather than returning an empty string.
var emptyRoot = crypto.HashBytes([]byte("empty"))

// leafHash encodes one hash string the same length-prefixed way
// core/block.go's ComputeTxRoot does, then hashes it as a tree leaf.
func leafHash(hash string) []byte {
	id := []byte(hash)
	buf := make([]byte, 4+len(id))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(id)))
	copy(buf[4:], id)
	return crypto.HashBytes(buf)
}

func nodeHash(left, right []byte) []byte {
	buf := make([]byte, len(left)+len(right))
	copy(buf, left)
	copy(buf[len(left):], right)
	return crypto.HashBytes(buf)
}

// Root computes the Merkle root over hashes in order, duplicating the last
// node at each level when the level has an odd count (the standard
// Bitcoin-style fixup), and returns it hex-encoded.
func Root(hashes []string) string {
	if len(hashes) == 0 {
		return hex.EncodeToString(emptyRoot)
	}
	level := make([][]byte, len(hashes))
	for i, h := range hashes {
		level[i] = leafHash(h)
	}
	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, nodeHash(level[i], level[i+1]))
			} else {
				next = append(next, nodeHash(level[i], level[i]))
			}
		}
		level = next
	}
	return hex.EncodeToString(level[0])
}
