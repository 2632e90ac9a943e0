// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package pxl implements the .pxl container format: a self-contained,
// tamper-evident envelope for a single image that can be integrity-
// and provenance-verified offline, without a trust server.
//
// The package is organized in layers, each usable independently:
//
//   - Chunking: the image is split into fixed 256 KiB chunks (the
//     final chunk holds the remainder). Chunk boundaries are a
//     protocol constant — two implementations that disagree on them
//     produce incompatible containers.
//
//   - Hashing: each chunk is hashed with BLAKE3, and the ordered
//     chunk digests are aggregated into a Merkle root by pairwise
//     combination. An odd trailing digest is promoted to the next
//     level unchanged, never duplicated.
//
//   - Manifest: the canonical record {metadata, chunk_hashes,
//     merkle_root, device_fingerprint, trust_level}, serialized with
//     CBOR Core Deterministic Encoding via lib/codec. The canonical
//     bytes are exactly what gets signed.
//
//   - Container: MAGIC ‖ VERSION ‖ CHUNK_COUNT ‖ IMAGE_SIZE ‖ chunks ‖
//     MANIFEST_LEN ‖ manifest ‖ signature ‖ FOOTER. Write-once;
//     [Pack] produces it wholly in memory, [Verify] consumes it and
//     fails fast at the first stage that does not check out.
//
// Verification is staged and each stage has its own error kind
// ([ErrFormat], [ErrTruncated], [ErrIntegrity], [ErrSignature],
// [ErrProvenance]), discriminated with errors.Is. No failure is ever
// downgraded to a warning: a container that fails any stage must not
// be treated as trusted.
package pxl
