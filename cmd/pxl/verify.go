// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pixealed/pixealed/lib/bundle"
	"github.com/pixealed/pixealed/lib/keystore"
	"github.com/pixealed/pixealed/lib/pxl"
)

func runVerify(args []string) error {
	flags := pflag.NewFlagSet("verify", pflag.ExitOnError)
	keyPath := flags.String("key", "", "public key file (hex, as written by keygen)")
	verbose := flags.Bool("verbose", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pxl verify [flags] <container.pxl | bundle.zip>\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("exactly one container or bundle argument required")
	}
	logger := newLogger(*verbose)

	container, bundledKey, err := loadContainer(flags.Arg(0))
	if err != nil {
		return err
	}

	publicKey := bundledKey
	if *keyPath != "" {
		publicKey, err = keystore.LoadPublicKey(*keyPath)
		if err != nil {
			return err
		}
		if bundledKey != nil && !publicKey.Equal(bundledKey) {
			logger.Warn("bundle carries a different public key than --key; using --key")
		}
	}
	if publicKey == nil {
		return fmt.Errorf("no public key: pass --key, or verify a bundle that carries one")
	}

	result, err := pxl.Verify(container, publicKey)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	logger.Info("verification passed",
		"chunks", result.ChunkCount,
		"image_bytes", result.ImageSize,
		"trust", result.TrustLevel,
		"fingerprint", result.DeviceFingerprint)
	fmt.Println("OK")
	return nil
}

// loadContainer reads container bytes from a .pxl file or from inside
// a .zip bundle; bundles may also yield the packer's public key.
func loadContainer(path string) ([]byte, ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".zip") {
		return bundle.Read(bytes.NewReader(data), int64(len(data)))
	}
	return data, nil, nil
}
