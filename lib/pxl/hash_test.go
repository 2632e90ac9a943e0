// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"errors"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func TestHashChunkDeterministic(t *testing.T) {
	data := []byte("chunk content")
	if HashChunk(data) != HashChunk(data) {
		t.Error("HashChunk is not deterministic")
	}
}

func TestHashChunkIsPlainBLAKE3(t *testing.T) {
	// The leaf rule is plain unkeyed BLAKE3 — no domain separation.
	// Another implementation hashing the same bytes must agree.
	data := []byte("interoperability matters")
	if HashChunk(data) != Hash(blake3.Sum256(data)) {
		t.Error("HashChunk does not match unkeyed BLAKE3")
	}
}

func TestMerkleRootEmpty(t *testing.T) {
	if _, err := MerkleRoot(nil); !errors.Is(err, ErrEmptyDigestList) {
		t.Errorf("MerkleRoot(nil) error = %v, want ErrEmptyDigestList", err)
	}
}

func TestMerkleRootSingleDigest(t *testing.T) {
	digest := HashChunk([]byte("only chunk"))
	root, err := MerkleRoot([]Hash{digest})
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	if root != digest {
		t.Error("single-digest root is not the digest itself")
	}
}

// combine mirrors the normative interior-node rule for use as an
// independent reference in tests.
func combine(left, right Hash) Hash {
	var joined [64]byte
	copy(joined[:32], left[:])
	copy(joined[32:], right[:])
	return blake3.Sum256(joined[:])
}

func TestMerkleRootPairRule(t *testing.T) {
	d0 := HashChunk([]byte("zero"))
	d1 := HashChunk([]byte("one"))

	root, err := MerkleRoot([]Hash{d0, d1})
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	if root != combine(d0, d1) {
		t.Error("two-digest root is not hash(d0‖d1)")
	}
}

func TestMerkleRootOddPromotion(t *testing.T) {
	// Three digests: the trailing one is promoted unchanged, so the
	// root must be hash(hash(d0‖d1) ‖ d2) — NOT the duplicate-last
	// scheme hash(hash(d0‖d1) ‖ hash(d2‖d2)).
	d0 := HashChunk([]byte("zero"))
	d1 := HashChunk([]byte("one"))
	d2 := HashChunk([]byte("two"))

	root, err := MerkleRoot([]Hash{d0, d1, d2})
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}

	want := combine(combine(d0, d1), d2)
	if root != want {
		t.Error("odd trailing digest was not promoted unchanged")
	}

	duplicated := combine(combine(d0, d1), combine(d2, d2))
	if root == duplicated {
		t.Error("root matches the duplicate-last scheme; promotion rule broken")
	}
}

func TestMerkleRootFiveDigests(t *testing.T) {
	// Five leaves exercise promotion at two levels:
	// level 0: (d0 d1) (d2 d3) d4→promoted
	// level 1: (p01 p23) d4→promoted
	// level 2: (q d4)
	digests := make([]Hash, 5)
	for i := range digests {
		digests[i] = HashChunk([]byte{byte(i)})
	}

	root, err := MerkleRoot(digests)
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}

	p01 := combine(digests[0], digests[1])
	p23 := combine(digests[2], digests[3])
	want := combine(combine(p01, p23), digests[4])
	if root != want {
		t.Error("five-digest root does not follow the promotion rule")
	}
}

func TestMerkleRootSensitivity(t *testing.T) {
	digests := make([]Hash, 4)
	for i := range digests {
		digests[i] = HashChunk([]byte{byte(i)})
	}
	baseline, err := MerkleRoot(digests)
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}

	// Bit flip in any one digest changes the root.
	for i := range digests {
		flipped := make([]Hash, len(digests))
		copy(flipped, digests)
		flipped[i][0] ^= 0x01
		root, err := MerkleRoot(flipped)
		if err != nil {
			t.Fatalf("MerkleRoot: %v", err)
		}
		if root == baseline {
			t.Errorf("bit flip in digest %d did not change the root", i)
		}
	}

	// Reordering changes the root.
	swapped := make([]Hash, len(digests))
	copy(swapped, digests)
	swapped[1], swapped[2] = swapped[2], swapped[1]
	root, err := MerkleRoot(swapped)
	if err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	if root == baseline {
		t.Error("reordering digests did not change the root")
	}
}

func TestMerkleRootDoesNotMutateInput(t *testing.T) {
	digests := make([]Hash, 3)
	for i := range digests {
		digests[i] = HashChunk([]byte{byte(i)})
	}
	snapshot := make([]Hash, len(digests))
	copy(snapshot, digests)

	if _, err := MerkleRoot(digests); err != nil {
		t.Fatalf("MerkleRoot: %v", err)
	}
	for i := range digests {
		if digests[i] != snapshot[i] {
			t.Errorf("MerkleRoot mutated caller digest %d", i)
		}
	}
}

func TestFormatParseHash(t *testing.T) {
	digest := HashChunk([]byte("round trip"))
	formatted := FormatHash(digest)

	if formatted != strings.ToLower(formatted) {
		t.Error("FormatHash produced uppercase hex")
	}
	if len(formatted) != 64 {
		t.Errorf("FormatHash length = %d, want 64", len(formatted))
	}

	parsed, err := ParseHash(formatted)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	if parsed != digest {
		t.Error("ParseHash(FormatHash(d)) != d")
	}

	if _, err := ParseHash("zz"); err == nil {
		t.Error("ParseHash accepted non-hex input")
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Error("ParseHash accepted a short digest")
	}
}
