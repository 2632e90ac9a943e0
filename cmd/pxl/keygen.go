// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/pixealed/pixealed/lib/identity"
	"github.com/pixealed/pixealed/lib/keystore"
)

// runKeygen mints (or reloads) the device identity and writes the
// public key file verifiers need. Running it twice is harmless: the
// identity is stable once the device ID and app secret exist.
func runKeygen(args []string) error {
	flags := pflag.NewFlagSet("keygen", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (overrides PIXEALED_CONFIG)")
	verbose := flags.Bool("verbose", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pxl keygen [flags]\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	logger := newLogger(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	id, err := loadIdentity(cfg)
	if err != nil {
		return err
	}

	if cfg.Identity.PublicKeyPath != "" {
		if err := keystore.SavePublicKey(cfg.Identity.PublicKeyPath, id.PublicKey()); err != nil {
			return err
		}
		logger.Info("public key written", "path", cfg.Identity.PublicKeyPath)
	}

	fmt.Printf("origin:      %s\n", id.Origin())
	fmt.Printf("trust:       %s\n", id.TrustLevel())
	fmt.Printf("fingerprint: %s\n", identity.FingerprintHex(id.PublicKey()))
	return nil
}
