// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle reads and writes distribution bundles: a zip archive
// holding one container plus the signer's public key, so a recipient
// can verify without an out-of-band key exchange. The key inside the
// bundle only proves internal consistency; trusting the device behind
// it is the recipient's decision.
package bundle

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// publicKeyEntry is the archive member holding the raw Ed25519 public
// key bytes.
const publicKeyEntry = "public_key.bin"

// ErrNoContainer is returned by Read when the archive holds no .pxl
// member.
var ErrNoContainer = errors.New("bundle: no .pxl member in archive")

// Write emits a bundle to w. name becomes the container member's name
// inside the archive; a .pxl suffix is appended when missing. The
// container bytes are deflated, the key is stored as-is.
func Write(w io.Writer, name string, container []byte, publicKey ed25519.PublicKey) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("bundle: public key is %d bytes, want %d", len(publicKey), ed25519.PublicKeySize)
	}
	if !strings.HasSuffix(name, ".pxl") {
		name += ".pxl"
	}

	archive := zip.NewWriter(w)

	member, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("bundle: creating %s member: %w", name, err)
	}
	if _, err := member.Write(container); err != nil {
		return fmt.Errorf("bundle: writing container: %w", err)
	}

	keyMember, err := archive.CreateHeader(&zip.FileHeader{
		Name:   publicKeyEntry,
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("bundle: creating key member: %w", err)
	}
	if _, err := keyMember.Write(publicKey); err != nil {
		return fmt.Errorf("bundle: writing public key: %w", err)
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("bundle: finalizing archive: %w", err)
	}
	return nil
}

// Read extracts the container and public key from a bundle. The
// container member is the first whose name ends in .pxl; the key
// member is public_key.bin (or any member with "public" in its name,
// for bundles from older packagers). A missing key member is not an
// error: the key return is nil and the caller must supply one.
func Read(r io.ReaderAt, size int64) (container []byte, publicKey ed25519.PublicKey, err error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: opening archive: %w", err)
	}

	var containerFile, keyFile *zip.File
	for _, file := range archive.File {
		switch {
		case containerFile == nil && strings.HasSuffix(file.Name, ".pxl"):
			containerFile = file
		case keyFile == nil && isKeyMember(file.Name):
			keyFile = file
		}
	}
	if containerFile == nil {
		return nil, nil, ErrNoContainer
	}

	container, err = readMember(containerFile)
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: reading %s: %w", containerFile.Name, err)
	}

	if keyFile != nil {
		raw, err := readMember(keyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("bundle: reading %s: %w", keyFile.Name, err)
		}
		if len(raw) != ed25519.PublicKeySize {
			return nil, nil, fmt.Errorf("bundle: key member %s holds %d bytes, want %d",
				keyFile.Name, len(raw), ed25519.PublicKeySize)
		}
		publicKey = ed25519.PublicKey(raw)
	}
	return container, publicKey, nil
}

func isKeyMember(name string) bool {
	return strings.HasSuffix(name, ".pub") || strings.Contains(strings.ToLower(name), "public")
}

func readMember(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
