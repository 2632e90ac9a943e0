// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"fmt"

	"github.com/pixealed/pixealed/lib/codec"
	"github.com/pixealed/pixealed/lib/identity"
)

// Manifest is the canonical record that gets signed. It is built once
// per pack and immutable afterward. Digests appear in their lowercase
// hex form so the manifest stays inspectable with generic CBOR
// tooling.
//
// Canonical ordering is part of the type's contract, not an accident
// of the host environment: Encode always emits CBOR Core
// Deterministic Encoding (via lib/codec), so the same logical content
// is always the same bytes regardless of how the struct or its
// metadata map was populated.
type Manifest struct {
	// Metadata is the camera/provenance field map injected by the
	// metadata extractor. May be empty. Opaque to the core beyond
	// being covered by the signature.
	Metadata map[string]string `json:"metadata"`

	// ChunkHashes are the ordered per-chunk BLAKE3 digests, one per
	// chunk, lowercase hex.
	ChunkHashes []string `json:"chunk_hashes"`

	// MerkleRoot is the root over ChunkHashes, lowercase hex.
	MerkleRoot string `json:"merkle_root"`

	// DeviceFingerprint is the SHA-256 of the signer's public key,
	// lowercase hex.
	DeviceFingerprint string `json:"device_fingerprint"`

	// TrustLevel is "High" or "Medium", derived solely from the key
	// origin at pack time.
	TrustLevel string `json:"trust_level"`
}

// Encode returns the manifest's canonical bytes — exactly the bytes
// that are signed and embedded in the container.
func (m *Manifest) Encode() ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	encoded, err := codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding manifest: %v", ErrFormat, err)
	}
	return encoded, nil
}

// DecodeManifest parses canonical manifest bytes and validates the
// structural invariants. Decode(Encode(m)) reproduces m for every
// valid manifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: decoding manifest: %v", ErrFormat, err)
	}
	if manifest.Metadata == nil {
		manifest.Metadata = map[string]string{}
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	if len(m.ChunkHashes) == 0 {
		return fmt.Errorf("%w: manifest has no chunk hashes", ErrFormat)
	}
	for i, hexDigest := range m.ChunkHashes {
		if err := checkCanonicalDigest(hexDigest); err != nil {
			return fmt.Errorf("%w: chunk hash %d: %v", ErrFormat, i, err)
		}
	}
	if err := checkCanonicalDigest(m.MerkleRoot); err != nil {
		return fmt.Errorf("%w: merkle root: %v", ErrFormat, err)
	}
	if err := checkCanonicalDigest(m.DeviceFingerprint); err != nil {
		return fmt.Errorf("%w: device fingerprint: %v", ErrFormat, err)
	}
	if m.TrustLevel != identity.TrustHigh && m.TrustLevel != identity.TrustMedium {
		return fmt.Errorf("%w: trust level %q is not %q or %q",
			ErrFormat, m.TrustLevel, identity.TrustHigh, identity.TrustMedium)
	}
	return nil
}

// checkCanonicalDigest verifies that a digest string is the canonical
// form: exactly 64 lowercase hex characters. Uppercase hex decodes
// fine but is not canonical, and a non-canonical manifest must not
// validate — its signature would never be reproducible.
func checkCanonicalDigest(hexDigest string) error {
	if _, err := ParseHash(hexDigest); err != nil {
		return err
	}
	for _, c := range hexDigest {
		if c >= 'A' && c <= 'F' {
			return fmt.Errorf("digest %q is not lowercase hex", hexDigest)
		}
	}
	return nil
}
