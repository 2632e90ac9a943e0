// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pixealed/pixealed/lib/bundle"
	"github.com/pixealed/pixealed/lib/identity"
	"github.com/pixealed/pixealed/lib/metadata"
	"github.com/pixealed/pixealed/lib/pxl"
)

func runPack(args []string) error {
	flags := pflag.NewFlagSet("pack", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (overrides PIXEALED_CONFIG)")
	outputPath := flags.String("output", "", "output container path (default: image name with .pxl)")
	makeBundle := flags.Bool("bundle", false, "also write a .zip bundle with the public key")
	verbose := flags.Bool("verbose", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pxl pack [flags] <image>\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("exactly one image argument required")
	}
	imagePath := flags.Arg(0)
	logger := newLogger(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	logger.Debug("image loaded", "path", imagePath, "bytes", len(image))

	id, err := loadIdentity(cfg)
	if err != nil {
		return err
	}
	logger.Debug("identity ready",
		"origin", id.Origin(),
		"fingerprint", identity.FingerprintHex(id.PublicKey()))

	fields := metadata.Extract(image)
	logger.Debug("metadata extracted", "summary", metadata.Summary(fields))

	container, err := pxl.Pack(image, fields, id)
	if err != nil {
		return fmt.Errorf("packing: %w", err)
	}

	// Verify what was just written before telling the user it
	// succeeded. A pack that does not verify is a bug, not output.
	result, err := pxl.Verify(container, id.PublicKey())
	if err != nil {
		return fmt.Errorf("post-pack verification failed: %w", err)
	}

	out := *outputPath
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
		out = filepath.Join(cfg.Output.Dir, base+".pxl")
	}
	if err := writeFileAtomic(out, container); err != nil {
		return fmt.Errorf("writing container: %w", err)
	}
	logger.Info("container written",
		"path", out,
		"chunks", result.ChunkCount,
		"trust", result.TrustLevel)

	if *makeBundle || cfg.Output.Bundle {
		bundlePath := strings.TrimSuffix(out, ".pxl") + ".zip"
		var archive bytes.Buffer
		if err := bundle.Write(&archive, filepath.Base(out), container, id.PublicKey()); err != nil {
			return err
		}
		if err := writeFileAtomic(bundlePath, archive.Bytes()); err != nil {
			return fmt.Errorf("writing bundle: %w", err)
		}
		logger.Info("bundle written", "path", bundlePath)
	}

	fmt.Println(out)
	return nil
}
