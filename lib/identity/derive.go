// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/pixealed/pixealed/lib/secret"
)

// hkdfInfoFallback is the HKDF info string for fallback identity
// derivation. Changing it changes every derived keypair, which would
// silently re-identify every device — it is a protocol constant.
var hkdfInfoFallback = []byte("pixealed.identity.fallback.v1")

// DeriveFallback derives the deterministic fallback identity for a
// device. The Ed25519 seed is HKDF-SHA256 output with the app secret
// as input key material, the device ID as salt, and a fixed info
// string. The derivation is pure: identical (deviceID, appSecret)
// always yields the bit-identical keypair, so the identity can be
// regenerated after a reinstall without the private key ever having
// been stored.
func DeriveFallback(deviceID string, appSecret []byte) (*Identity, error) {
	if deviceID == "" {
		return nil, errors.New("identity: device ID is empty")
	}
	if len(appSecret) == 0 {
		return nil, errors.New("identity: app secret is empty")
	}

	reader := hkdf.New(sha256.New, appSecret, []byte(deviceID), hkdfInfoFallback)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		secret.Zero(seed)
		return nil, fmt.Errorf("identity: HKDF derivation: %w", err)
	}

	private := ed25519.NewKeyFromSeed(seed)
	secret.Zero(seed)

	return &Identity{
		origin:  OriginDeterministicFallback,
		public:  private.Public().(ed25519.PublicKey),
		private: private,
	}, nil
}
