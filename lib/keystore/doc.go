// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore persists the device identity material: the device
// ID and the app secret that feed the deterministic key derivation,
// and the public key published for verifiers.
//
// The app secret is the sensitive item. At rest it is either a
// plaintext 0600 file or, when the store is configured with a
// passphrase, an age scrypt-sealed file. In memory it only ever lives
// in a secret.Buffer (mmap-backed, locked against swap, excluded from
// core dumps, zeroed on close).
//
// The device ID is not secret — it is a random identifier, not key
// material — but it is stable: once created it must never change, or
// the derived identity (and every fingerprint recorded in previously
// signed containers) changes with it.
package keystore
