// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/pixealed/pixealed/lib/codec"
	"github.com/pixealed/pixealed/lib/pxl"
)

func runShow(args []string) error {
	flags := pflag.NewFlagSet("show", pflag.ExitOnError)
	rawManifest := flags.Bool("manifest", false, "print the manifest in CBOR diagnostic notation")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pxl show [flags] <container.pxl | bundle.zip>\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("exactly one container or bundle argument required")
	}

	container, _, err := loadContainer(flags.Arg(0))
	if err != nil {
		return err
	}

	if *rawManifest {
		raw, err := pxl.RawManifest(container)
		if err != nil {
			return err
		}
		diagnostic, err := codec.Diagnose(raw)
		if err != nil {
			return fmt.Errorf("rendering manifest: %w", err)
		}
		fmt.Println(diagnostic)
		return nil
	}

	image, manifest, err := pxl.Read(container)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "image bytes:\t%d\n", len(image))
	fmt.Fprintf(writer, "chunks:\t%d\n", len(manifest.ChunkHashes))
	fmt.Fprintf(writer, "merkle root:\t%s\n", manifest.MerkleRoot)
	fmt.Fprintf(writer, "fingerprint:\t%s\n", manifest.DeviceFingerprint)
	fmt.Fprintf(writer, "trust:\t%s\n", manifest.TrustLevel)

	keys := make([]string, 0, len(manifest.Metadata))
	for key := range manifest.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(writer, "meta %s:\t%s\n", key, manifest.Metadata[key])
	}
	return writer.Flush()
}
