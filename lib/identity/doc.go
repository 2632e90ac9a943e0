// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements the provenance side of the .pxl format:
// the device signing identity, its origin and trust tier, and the
// fingerprint that binds a manifest to a device.
//
// An [Identity] comes from one of two origins:
//
//   - Hardware-backed: the keypair lives inside a hardware key store
//     (TPM, Secure Enclave, Keystore equivalent) reached through the
//     [HardwareKey] capability interface. The private key never
//     crosses that boundary — this package only ever asks the
//     capability for its public key and for signatures.
//
//   - Deterministic fallback: when no hardware capability is
//     available, the keypair is derived with HKDF-SHA256 from the
//     device ID and the app secret. The derivation is a pure
//     function, so the identity survives reinstalls without the
//     private key ever being persisted.
//
// The trust tier is a pure function of the origin tag: hardware-backed
// identities are "High", fallback identities are "Medium". Nothing
// else feeds into it, and verifiers treat it as informational.
package identity
