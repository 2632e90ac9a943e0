// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/pixealed/pixealed/lib/identity"
	"github.com/pixealed/pixealed/lib/secret"
)

const (
	// deviceIDBytes is the entropy of a freshly minted device ID. The
	// ID is stored as lowercase hex, so the file holds twice this many
	// characters.
	deviceIDBytes = 16

	// appSecretBytes is the size of the app secret, the IKM for the
	// fallback key derivation.
	appSecretBytes = 32
)

// Config locates the identity material and selects how the app secret
// is protected at rest.
type Config struct {
	// DeviceIDPath is the device ID file. Created on first use.
	DeviceIDPath string

	// AppSecretPath is the app secret file. Created on first use:
	// age scrypt-sealed when Passphrase is set, plaintext 0600
	// otherwise. A store created with a passphrase must always be
	// opened with one, and vice versa.
	AppSecretPath string

	// Passphrase seals and unseals the app secret. Borrowed, not
	// closed. Optional.
	Passphrase *secret.Buffer

	// Hardware is the hardware key store capability, if the platform
	// provides one. When present and available it takes precedence
	// over the derived fallback identity. Optional.
	Hardware identity.HardwareKey
}

// LoadOrCreate returns the device identity, minting the device ID and
// app secret files on first use. The app secret is zeroed from memory
// before returning; only the derived Ed25519 key survives in the
// identity.
func LoadOrCreate(cfg Config) (*identity.Identity, error) {
	if cfg.Hardware != nil && cfg.Hardware.Available() {
		return identity.FromHardware(cfg.Hardware)
	}

	deviceID, err := loadOrCreateDeviceID(cfg.DeviceIDPath)
	if err != nil {
		return nil, err
	}

	appSecret, err := loadOrCreateAppSecret(cfg.AppSecretPath, cfg.Passphrase)
	if err != nil {
		return nil, err
	}
	defer appSecret.Close()

	return identity.DeriveFallback(deviceID, appSecret.Bytes())
}

// SavePublicKey writes a public key as lowercase hex, the form
// verifiers exchange out of band.
func SavePublicKey(path string, public ed25519.PublicKey) error {
	if len(public) != ed25519.PublicKeySize {
		return fmt.Errorf("keystore: public key is %d bytes, want %d", len(public), ed25519.PublicKeySize)
	}
	encoded := hex.EncodeToString(public) + "\n"
	if err := writeFile(path, []byte(encoded), 0o644); err != nil {
		return fmt.Errorf("keystore: writing public key: %w", err)
	}
	return nil
}

// LoadPublicKey reads a public key written by SavePublicKey.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: reading public key: %w", err)
	}
	public, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("keystore: public key file %s is not hex: %w", path, err)
	}
	if len(public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("keystore: public key file %s holds %d bytes, want %d",
			path, len(public), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(public), nil
}

func loadOrCreateDeviceID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		deviceID := strings.TrimSpace(string(data))
		if deviceID == "" {
			return "", fmt.Errorf("keystore: device ID file %s is empty", path)
		}
		return deviceID, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("keystore: reading device ID: %w", err)
	}

	raw := make([]byte, deviceIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("keystore: generating device ID: %w", err)
	}
	deviceID := hex.EncodeToString(raw)
	if err := writeFile(path, []byte(deviceID+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("keystore: writing device ID: %w", err)
	}
	return deviceID, nil
}

func loadOrCreateAppSecret(path string, passphrase *secret.Buffer) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if passphrase != nil {
			return unsealAppSecret(data, passphrase)
		}
		if len(data) != appSecretBytes {
			return nil, fmt.Errorf("keystore: app secret file %s holds %d bytes, want %d (sealed store opened without a passphrase?)",
				path, len(data), appSecretBytes)
		}
		// FromBytes zeros the heap copy read from disk.
		return secret.FromBytes(data)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("keystore: reading app secret: %w", err)
	}

	raw := make([]byte, appSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("keystore: generating app secret: %w", err)
	}
	appSecret, err := secret.FromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("keystore: protecting app secret: %w", err)
	}

	var fileBytes []byte
	mode := os.FileMode(0o600)
	if passphrase != nil {
		fileBytes, err = sealAppSecret(appSecret.Bytes(), passphrase)
		if err != nil {
			appSecret.Close()
			return nil, err
		}
	} else {
		fileBytes = append([]byte(nil), appSecret.Bytes()...)
	}
	if err := writeFile(path, fileBytes, mode); err != nil {
		secret.Zero(fileBytes)
		appSecret.Close()
		return nil, fmt.Errorf("keystore: writing app secret: %w", err)
	}
	secret.Zero(fileBytes)
	return appSecret, nil
}

// sealAppSecret encrypts the app secret to an age scrypt recipient
// derived from the passphrase. The output is the age binary format.
func sealAppSecret(appSecret []byte, passphrase *secret.Buffer) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(string(passphrase.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("keystore: deriving seal key: %w", err)
	}

	var sealed bytes.Buffer
	writer, err := age.Encrypt(&sealed, recipient)
	if err != nil {
		return nil, fmt.Errorf("keystore: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(appSecret); err != nil {
		return nil, fmt.Errorf("keystore: sealing app secret: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("keystore: finalizing seal: %w", err)
	}
	return sealed.Bytes(), nil
}

func unsealAppSecret(sealed []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	id, err := age.NewScryptIdentity(string(passphrase.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("keystore: deriving unseal key: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(sealed), id)
	if err != nil {
		return nil, fmt.Errorf("keystore: unsealing app secret (wrong passphrase, or plaintext store opened with one?): %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("keystore: reading unsealed app secret: %w", err)
	}
	if len(plaintext) != appSecretBytes {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("keystore: unsealed app secret is %d bytes, want %d", len(plaintext), appSecretBytes)
	}
	// FromBytes zeros the heap copy.
	return secret.FromBytes(plaintext)
}

// writeFile creates parent directories and writes via a temp file plus
// rename, so a crash mid-write cannot leave a partial identity file.
func writeFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
