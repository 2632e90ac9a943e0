// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import "errors"

// Error kinds for pack and verify failures. Every error returned by
// this package wraps exactly one of these sentinels, so callers
// discriminate with errors.Is. All failures are terminal to the call
// that raised them — the engine never retries and never downgrades a
// failed check.
var (
	// ErrFormat: bad magic, unsupported version, or a structurally
	// inconsistent container (bad footer, chunk count that disagrees
	// with the image size, undecodable manifest).
	ErrFormat = errors.New("pxl: malformed container")

	// ErrTruncated: the container is shorter than its declared
	// structure requires.
	ErrTruncated = errors.New("pxl: truncated container")

	// ErrIntegrity: a recomputed chunk digest or the recomputed
	// Merkle root disagrees with the manifest. The content has been
	// tampered with; it is never auto-repaired.
	ErrIntegrity = errors.New("pxl: integrity check failed")

	// ErrSignature: the manifest signature does not verify against
	// the supplied public key.
	ErrSignature = errors.New("pxl: signature verification failed")

	// ErrProvenance: the manifest's device fingerprint does not match
	// the supplied public key.
	ErrProvenance = errors.New("pxl: provenance check failed")

	// ErrEmptyInput: Pack or Split was given a zero-length image.
	ErrEmptyInput = errors.New("pxl: empty input")

	// ErrEmptyDigestList: MerkleRoot was given no digests. A valid
	// container always has at least one chunk.
	ErrEmptyDigestList = errors.New("pxl: empty digest list")
)
