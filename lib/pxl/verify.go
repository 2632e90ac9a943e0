// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/pixealed/pixealed/lib/identity"
)

// VerificationResult is the outcome of a successful Verify. The trust
// level is informational: callers decide policy on High versus
// Medium; the engine does not reject Medium-trust containers.
type VerificationResult struct {
	Metadata          map[string]string
	TrustLevel        string
	DeviceFingerprint string
	ChunkCount        int
	ImageSize         int64
	Verified          bool
}

// parsedContainer is the structural decomposition of a container:
// region boundaries checked, nothing cryptographic recomputed yet.
type parsedContainer struct {
	chunkCount    uint32
	image         []byte
	manifestBytes []byte
	manifest      *Manifest
	signature     []byte
}

// Verify checks a container's integrity and provenance against
// publicKey. The stages run in a fixed order and verification stops
// at the first failure with that stage's error kind:
//
//  1. Header (magic, version) — ErrFormat.
//  2. Region arithmetic and chunk re-slicing — ErrTruncated when
//     bytes run short, ErrFormat for structural inconsistency.
//  3. Recomputed chunk digests vs. manifest chunk_hashes, in order —
//     ErrIntegrity.
//  4. Recomputed Merkle root (from the recomputed digests) vs.
//     manifest merkle_root — ErrIntegrity. Checked separately from
//     stage 3: either could be forged independently.
//  5. Signature over the re-canonicalized manifest — ErrSignature.
//  6. Fingerprint of publicKey vs. manifest device_fingerprint —
//     ErrProvenance.
func Verify(container []byte, publicKey ed25519.PublicKey) (*VerificationResult, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d",
			ErrSignature, len(publicKey), ed25519.PublicKeySize)
	}

	parsed, err := parseContainer(container)
	if err != nil {
		return nil, err
	}
	manifest := parsed.manifest

	chunks, err := Split(parsed.image, ChunkSize)
	if err != nil {
		return nil, err
	}
	digests := hashChunks(chunks)

	if len(digests) != len(manifest.ChunkHashes) {
		return nil, fmt.Errorf("%w: container has %d chunks, manifest records %d",
			ErrIntegrity, len(digests), len(manifest.ChunkHashes))
	}
	for i, digest := range digests {
		if FormatHash(digest) != manifest.ChunkHashes[i] {
			return nil, fmt.Errorf("%w: chunk %d digest mismatch", ErrIntegrity, i)
		}
	}

	root, err := MerkleRoot(digests)
	if err != nil {
		return nil, err
	}
	if FormatHash(root) != manifest.MerkleRoot {
		return nil, fmt.Errorf("%w: merkle root mismatch", ErrIntegrity)
	}

	// Re-canonicalize the decoded manifest rather than trusting the
	// embedded bytes: a manifest that decodes to the same fields but
	// was not canonically encoded must fail here.
	canonical, err := manifest.Encode()
	if err != nil {
		return nil, err
	}
	if !identity.Verify(publicKey, canonical, parsed.signature) {
		return nil, fmt.Errorf("%w: manifest signature does not verify", ErrSignature)
	}

	if identity.FingerprintHex(publicKey) != manifest.DeviceFingerprint {
		return nil, fmt.Errorf("%w: public key does not match claimed device fingerprint", ErrProvenance)
	}

	return &VerificationResult{
		Metadata:          manifest.Metadata,
		TrustLevel:        manifest.TrustLevel,
		DeviceFingerprint: manifest.DeviceFingerprint,
		ChunkCount:        int(parsed.chunkCount),
		ImageSize:         int64(len(parsed.image)),
		Verified:          true,
	}, nil
}

// Read extracts the image bytes and decoded manifest from a
// container. Only structural checks are performed — no digest,
// signature, or fingerprint verification. Use Verify first whenever
// the container's provenance matters.
func Read(container []byte) ([]byte, *Manifest, error) {
	parsed, err := parseContainer(container)
	if err != nil {
		return nil, nil, err
	}
	return parsed.image, parsed.manifest, nil
}

// RawManifest returns the manifest bytes exactly as embedded in the
// container, after structural validation. The CLI uses this for
// diagnostic dumps of the canonical encoding.
func RawManifest(container []byte) ([]byte, error) {
	parsed, err := parseContainer(container)
	if err != nil {
		return nil, err
	}
	return parsed.manifestBytes, nil
}

// parseContainer delineates and validates the container's regions.
// All boundaries are pure arithmetic over the fixed header fields:
//
//	MAGIC(4) VERSION(1) CHUNK_COUNT(4) IMAGE_SIZE(8)
//	image[IMAGE_SIZE] MANIFEST_LEN(4) manifest SIGNATURE(64) FOOTER(4)
func parseContainer(data []byte) (*parsedContainer, error) {
	if len(data) < len(containerMagic) {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the magic", ErrTruncated, len(data))
	}
	if !bytes.Equal(data[:4], containerMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, data[:4])
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncated, len(data))
	}
	if version := data[4]; version != Version {
		return nil, fmt.Errorf("%w: version %d is not supported (this code supports version %d)",
			ErrFormat, version, Version)
	}

	chunkCount := binary.LittleEndian.Uint32(data[5:9])
	imageSize := binary.LittleEndian.Uint64(data[9:17])

	if imageSize == 0 || chunkCount == 0 {
		return nil, fmt.Errorf("%w: container declares an empty image", ErrFormat)
	}
	if chunkCountFor(imageSize) != uint64(chunkCount) {
		return nil, fmt.Errorf("%w: image size %d implies %d chunks, header declares %d",
			ErrFormat, imageSize, chunkCountFor(imageSize), chunkCount)
	}

	imageEnd := uint64(headerSize) + imageSize
	if uint64(len(data)) < imageEnd+4 {
		return nil, fmt.Errorf("%w: chunk region runs past end of container", ErrTruncated)
	}
	image := data[headerSize:imageEnd]

	manifestLen := uint64(binary.LittleEndian.Uint32(data[imageEnd : imageEnd+4]))
	manifestEnd := imageEnd + 4 + manifestLen
	total := manifestEnd + signatureSize + 4
	if uint64(len(data)) < total {
		return nil, fmt.Errorf("%w: manifest region runs past end of container", ErrTruncated)
	}
	if uint64(len(data)) != total {
		return nil, fmt.Errorf("%w: %d trailing bytes after footer", ErrFormat, uint64(len(data))-total)
	}

	manifestBytes := data[imageEnd+4 : manifestEnd]
	signature := data[manifestEnd : manifestEnd+signatureSize]

	if !bytes.Equal(data[total-4:], containerFooter[:]) {
		return nil, fmt.Errorf("%w: bad footer %q", ErrFormat, data[total-4:])
	}

	manifest, err := DecodeManifest(manifestBytes)
	if err != nil {
		return nil, err
	}

	return &parsedContainer{
		chunkCount:    chunkCount,
		image:         image,
		manifestBytes: manifestBytes,
		manifest:      manifest,
		signature:     signature,
	}, nil
}
