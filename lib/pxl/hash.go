// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. Chunk digests and Merkle roots are
// this size.
type Hash [32]byte

// HashChunk computes the BLAKE3 digest of a chunk's raw bytes. Leaf
// hashing uses plain (unkeyed) BLAKE3 with no domain separation —
// that is the format's fixed leaf rule, required for cross-
// implementation reproducibility.
func HashChunk(data []byte) Hash {
	return blake3.Sum256(data)
}

// MerkleRoot aggregates an ordered digest sequence into a single
// root. Adjacent digests are combined left-to-right, each parent
// being the BLAKE3 digest of left‖right (raw 64 bytes). When a level
// holds an odd number of digests, the trailing digest is promoted to
// the next level unchanged — it is NOT duplicated. The promotion rule
// is normative: a duplicate-last-node scheme produces different roots
// for every non-power-of-two chunk count.
//
// A single digest is its own root: no combination step is applied.
// Returns ErrEmptyDigestList for an empty sequence.
func MerkleRoot(digests []Hash) (Hash, error) {
	if len(digests) == 0 {
		return Hash{}, ErrEmptyDigestList
	}
	if len(digests) == 1 {
		return digests[0], nil
	}

	// Work on a copy so the caller's slice is never mutated.
	level := make([]Hash, len(digests))
	copy(level, digests)

	// Scratch buffer for concatenating two digests per combination.
	var combined [64]byte

	for len(level) > 1 {
		nextLength := (len(level) + 1) / 2
		next := make([]Hash, nextLength)

		for i := 0; i+1 < len(level); i += 2 {
			copy(combined[:32], level[i][:])
			copy(combined[32:], level[i+1][:])
			next[i/2] = blake3.Sum256(combined[:])
		}

		// Odd trailing digest: promote without hashing.
		if len(level)%2 == 1 {
			next[nextLength-1] = level[len(level)-1]
		}

		level = next
	}

	return level[0], nil
}

// FormatHash returns the lowercase hex encoding of a digest — the
// canonical textual form used in manifests, logs, and CLI output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character lowercase hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
