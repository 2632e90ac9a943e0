// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pixealed/pixealed/lib/identity"
)

func sampleManifest() *Manifest {
	digest := FormatHash(HashChunk([]byte("chunk")))
	return &Manifest{
		Metadata:          map[string]string{"make": "Canon", "model": "EOS R5"},
		ChunkHashes:       []string{digest},
		MerkleRoot:        digest,
		DeviceFingerprint: FormatHash(HashChunk([]byte("key"))),
		TrustLevel:        identity.TrustMedium,
	}
}

func TestManifestEncodeDeterministicAcrossInsertionOrder(t *testing.T) {
	first := sampleManifest()
	first.Metadata = map[string]string{}
	first.Metadata["make"] = "Canon"
	first.Metadata["model"] = "EOS R5"
	first.Metadata["iso"] = "100"

	second := sampleManifest()
	second.Metadata = map[string]string{}
	second.Metadata["iso"] = "100"
	second.Metadata["model"] = "EOS R5"
	second.Metadata["make"] = "Canon"

	firstBytes, err := first.Encode()
	if err != nil {
		t.Fatalf("Encode(first): %v", err)
	}
	secondBytes, err := second.Encode()
	if err != nil {
		t.Fatalf("Encode(second): %v", err)
	}
	if !bytes.Equal(firstBytes, secondBytes) {
		t.Error("metadata insertion order changed the canonical bytes")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	original := sampleManifest()
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeManifest(encoded)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}

	// Re-encoding the decoded manifest reproduces the same bytes —
	// this is what the signature check relies on.
	reencoded, err := decoded.Encode()
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Error("re-encoding the decoded manifest changed the bytes")
	}
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"no chunk hashes", func(m *Manifest) { m.ChunkHashes = nil }},
		{"bad chunk hash", func(m *Manifest) { m.ChunkHashes[0] = "not hex" }},
		{"short merkle root", func(m *Manifest) { m.MerkleRoot = "abcd" }},
		{"uppercase merkle root", func(m *Manifest) { m.MerkleRoot = strings.ToUpper(m.MerkleRoot) }},
		{"bad fingerprint", func(m *Manifest) { m.DeviceFingerprint = "" }},
		{"unknown trust level", func(m *Manifest) { m.TrustLevel = "Low" }},
		{"empty trust level", func(m *Manifest) { m.TrustLevel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := sampleManifest()
			tt.mutate(manifest)
			if _, err := manifest.Encode(); !errors.Is(err, ErrFormat) {
				t.Errorf("Encode error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestDecodeManifestRejectsGarbage(t *testing.T) {
	if _, err := DecodeManifest([]byte("not cbor at all")); !errors.Is(err, ErrFormat) {
		t.Errorf("DecodeManifest error = %v, want ErrFormat", err)
	}
}

func TestDecodeManifestNormalizesNilMetadata(t *testing.T) {
	manifest := sampleManifest()
	manifest.Metadata = nil
	encoded, err := manifest.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeManifest(encoded)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if decoded.Metadata == nil {
		t.Error("decoded metadata is nil, want empty map")
	}
}
