// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Origin tags where an identity's key material lives.
type Origin string

const (
	// OriginHardwareBacked: the private key is held inside a hardware
	// key store and is used only through the HardwareKey capability.
	OriginHardwareBacked Origin = "hardware-backed"

	// OriginDeterministicFallback: the keypair is re-derivable from
	// the device ID and app secret; the private key is held in
	// process memory for the identity's lifetime and never persisted.
	OriginDeterministicFallback Origin = "deterministic-fallback"
)

// Trust tiers recorded in the manifest. The tier is derived from the
// key origin and nothing else.
const (
	TrustHigh   = "High"
	TrustMedium = "Medium"
)

// TrustLevel maps an origin tag to its trust tier. Pure function:
// hardware-backed is High, everything else is Medium.
func (o Origin) TrustLevel() string {
	if o == OriginHardwareBacked {
		return TrustHigh
	}
	return TrustMedium
}

// HardwareKey is the capability a hardware key store provides. The
// core never reads private key material through it — only the public
// key and signatures. A Sign call may block on the device boundary;
// callers impose their own timeout or cancellation externally.
type HardwareKey interface {
	// Available reports whether the hardware key store can be used.
	Available() bool

	// PublicKey returns the Ed25519 public key held by the hardware.
	PublicKey() (ed25519.PublicKey, error)

	// Sign signs message inside the hardware boundary and returns the
	// Ed25519 signature.
	Sign(message []byte) ([]byte, error)
}

// Identity is a device signing identity: an Ed25519 keypair plus its
// origin tag. For hardware-backed identities the private half stays
// behind the HardwareKey capability; for fallback identities it is
// held in memory.
type Identity struct {
	origin   Origin
	public   ed25519.PublicKey
	private  ed25519.PrivateKey
	hardware HardwareKey
}

// FromHardware builds an identity over a hardware capability. The
// capability must report itself available.
func FromHardware(hw HardwareKey) (*Identity, error) {
	if hw == nil || !hw.Available() {
		return nil, errors.New("identity: hardware key store is not available")
	}
	public, err := hw.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("identity: reading hardware public key: %w", err)
	}
	if len(public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("identity: hardware public key is %d bytes, want %d", len(public), ed25519.PublicKeySize)
	}
	return &Identity{
		origin:   OriginHardwareBacked,
		public:   public,
		hardware: hw,
	}, nil
}

// Acquire returns the device identity: hardware-backed when the
// capability is present and available, otherwise the deterministic
// fallback derived from deviceID and appSecret.
func Acquire(hw HardwareKey, deviceID string, appSecret []byte) (*Identity, error) {
	if hw != nil && hw.Available() {
		return FromHardware(hw)
	}
	return DeriveFallback(deviceID, appSecret)
}

// Origin returns the identity's origin tag.
func (id *Identity) Origin() Origin {
	return id.origin
}

// PublicKey returns the identity's Ed25519 public key.
func (id *Identity) PublicKey() ed25519.PublicKey {
	return id.public
}

// TrustLevel returns the trust tier implied by the identity's origin.
func (id *Identity) TrustLevel() string {
	return id.origin.TrustLevel()
}

// Fingerprint returns the identity's device fingerprint.
func (id *Identity) Fingerprint() [sha256.Size]byte {
	return Fingerprint(id.public)
}

// Sign signs message with the identity. Hardware-backed identities
// route through the hardware capability; fallback identities sign
// with the in-memory private key.
func (id *Identity) Sign(message []byte) ([]byte, error) {
	if id.origin == OriginHardwareBacked {
		signature, err := id.hardware.Sign(message)
		if err != nil {
			return nil, fmt.Errorf("identity: hardware sign: %w", err)
		}
		if len(signature) != ed25519.SignatureSize {
			return nil, fmt.Errorf("identity: hardware signature is %d bytes, want %d", len(signature), ed25519.SignatureSize)
		}
		return signature, nil
	}
	return ed25519.Sign(id.private, message), nil
}

// Fingerprint computes the device fingerprint for a public key: its
// SHA-256 digest. The fingerprint is a stable pseudonymous device
// identifier; it appears in every manifest the device signs.
func Fingerprint(public ed25519.PublicKey) [sha256.Size]byte {
	return sha256.Sum256(public)
}

// FingerprintHex returns the fingerprint in its canonical lowercase
// hex form, as recorded in manifests.
func FingerprintHex(public ed25519.PublicKey) string {
	fingerprint := Fingerprint(public)
	return hex.EncodeToString(fingerprint[:])
}

// Verify reports whether signature is a valid Ed25519 signature of
// message under public.
func Verify(public ed25519.PublicKey, message, signature []byte) bool {
	if len(public) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(public, message, signature)
}
