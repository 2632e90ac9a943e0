// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
)

// fakeHardwareKey is an in-memory stand-in for a hardware key store.
// The private key is held inside the fake, mirroring the real
// contract: callers only see PublicKey and Sign.
type fakeHardwareKey struct {
	available bool
	private   ed25519.PrivateKey
	signErr   error
}

func newFakeHardwareKey(t *testing.T) *fakeHardwareKey {
	t.Helper()
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating fake hardware key: %v", err)
	}
	return &fakeHardwareKey{available: true, private: private}
}

func (f *fakeHardwareKey) Available() bool { return f.available }

func (f *fakeHardwareKey) PublicKey() (ed25519.PublicKey, error) {
	return f.private.Public().(ed25519.PublicKey), nil
}

func (f *fakeHardwareKey) Sign(message []byte) ([]byte, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	return ed25519.Sign(f.private, message), nil
}

func TestDeriveFallbackDeterministic(t *testing.T) {
	appSecret := []byte("0123456789abcdef0123456789abcdef")

	first, err := DeriveFallback("device-a", appSecret)
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}
	second, err := DeriveFallback("device-a", appSecret)
	if err != nil {
		t.Fatalf("DeriveFallback (repeat): %v", err)
	}

	if !bytes.Equal(first.PublicKey(), second.PublicKey()) {
		t.Error("identical inputs derived different public keys")
	}
	if !bytes.Equal(first.private, second.private) {
		t.Error("identical inputs derived different private keys")
	}
}

func TestDeriveFallbackDistinctInputs(t *testing.T) {
	appSecret := []byte("0123456789abcdef0123456789abcdef")

	byDevice, err := DeriveFallback("device-a", appSecret)
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}
	otherDevice, err := DeriveFallback("device-b", appSecret)
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}
	otherSecret, err := DeriveFallback("device-a", []byte("a different app secret value here"))
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}

	if bytes.Equal(byDevice.PublicKey(), otherDevice.PublicKey()) {
		t.Error("different device IDs derived the same keypair")
	}
	if bytes.Equal(byDevice.PublicKey(), otherSecret.PublicKey()) {
		t.Error("different app secrets derived the same keypair")
	}
}

func TestDeriveFallbackRejectsEmptyInputs(t *testing.T) {
	if _, err := DeriveFallback("", []byte("secret")); err == nil {
		t.Error("empty device ID accepted")
	}
	if _, err := DeriveFallback("device-a", nil); err == nil {
		t.Error("empty app secret accepted")
	}
}

func TestTrustLevelPurity(t *testing.T) {
	if got := OriginHardwareBacked.TrustLevel(); got != TrustHigh {
		t.Errorf("hardware origin trust = %q, want %q", got, TrustHigh)
	}
	if got := OriginDeterministicFallback.TrustLevel(); got != TrustMedium {
		t.Errorf("fallback origin trust = %q, want %q", got, TrustMedium)
	}
}

func TestSignVerifyFallback(t *testing.T) {
	id, err := DeriveFallback("device-a", []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}

	message := []byte("canonical manifest bytes")
	signature, err := id.Sign(message)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !Verify(id.PublicKey(), message, signature) {
		t.Fatal("signature did not verify")
	}

	tampered := append([]byte(nil), message...)
	tampered[0] ^= 0x01
	if Verify(id.PublicKey(), tampered, signature) {
		t.Error("signature verified over tampered message")
	}
}

func TestAcquirePrefersHardware(t *testing.T) {
	hw := newFakeHardwareKey(t)
	id, err := Acquire(hw, "device-a", []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if id.Origin() != OriginHardwareBacked {
		t.Errorf("origin = %q, want %q", id.Origin(), OriginHardwareBacked)
	}
	if id.TrustLevel() != TrustHigh {
		t.Errorf("trust = %q, want %q", id.TrustLevel(), TrustHigh)
	}

	message := []byte("sign me")
	signature, err := id.Sign(message)
	if err != nil {
		t.Fatalf("Sign via hardware: %v", err)
	}
	if !Verify(id.PublicKey(), message, signature) {
		t.Error("hardware signature did not verify")
	}
}

func TestAcquireFallsThroughWhenUnavailable(t *testing.T) {
	hw := newFakeHardwareKey(t)
	hw.available = false

	id, err := Acquire(hw, "device-a", []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if id.Origin() != OriginDeterministicFallback {
		t.Errorf("origin = %q, want %q", id.Origin(), OriginDeterministicFallback)
	}
	if id.TrustLevel() != TrustMedium {
		t.Errorf("trust = %q, want %q", id.TrustLevel(), TrustMedium)
	}
}

func TestHardwareSignErrorPropagates(t *testing.T) {
	hw := newFakeHardwareKey(t)
	hw.signErr = errors.New("device removed")

	id, err := FromHardware(hw)
	if err != nil {
		t.Fatalf("FromHardware: %v", err)
	}
	if _, err := id.Sign([]byte("message")); err == nil {
		t.Error("hardware sign failure was swallowed")
	}
}

func TestFingerprintStable(t *testing.T) {
	id, err := DeriveFallback("device-a", []byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("DeriveFallback: %v", err)
	}
	first := FingerprintHex(id.PublicKey())
	second := FingerprintHex(id.PublicKey())
	if first != second {
		t.Error("fingerprint is not stable")
	}
	if len(first) != 64 {
		t.Errorf("fingerprint hex length = %d, want 64", len(first))
	}
}
