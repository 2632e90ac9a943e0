// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/pixealed/pixealed/lib/config"
	"github.com/pixealed/pixealed/lib/identity"
	"github.com/pixealed/pixealed/lib/keystore"
	"github.com/pixealed/pixealed/lib/secret"
	"github.com/pixealed/pixealed/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch subcommand := os.Args[1]; subcommand {
	case "pack":
		return runPack(os.Args[2:])
	case "verify":
		return runVerify(os.Args[2:])
	case "show":
		return runShow(os.Args[2:])
	case "keygen":
		return runKeygen(os.Args[2:])
	case "version":
		fmt.Printf("pxl %s\n", version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: pxl <subcommand> [flags]

Subcommands:
  pack      Pack an image into a signed .pxl container
  verify    Verify a .pxl container or .zip bundle
  show      Print a container's manifest and metadata
  keygen    Initialize the device identity and write the public key
  version   Print version information

Run 'pxl <subcommand> --help' for subcommand flags.
`)
}

// newLogger builds the CLI logger. Progress and diagnostics go to
// stderr so stdout stays machine-readable.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the configuration: the --config flag wins over
// the PIXEALED_CONFIG environment variable, which wins over defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadIdentity opens (or mints) the device identity per the
// configuration, prompting for a passphrase when the app secret is
// sealed.
func loadIdentity(cfg *config.Config) (*identity.Identity, error) {
	storeConfig := keystore.Config{
		DeviceIDPath:  cfg.Identity.DeviceIDPath,
		AppSecretPath: cfg.Identity.AppSecretPath,
	}
	if cfg.Identity.SealAppSecret {
		passphrase, err := promptPassphrase()
		if err != nil {
			return nil, err
		}
		defer passphrase.Close()
		storeConfig.Passphrase = passphrase
		return keystore.LoadOrCreate(storeConfig)
	}
	return keystore.LoadOrCreate(storeConfig)
}

// promptPassphrase reads the app secret passphrase from the terminal
// with echo disabled. The bytes go straight into protected memory.
func promptPassphrase() (*secret.Buffer, error) {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		return nil, fmt.Errorf("app secret is sealed but stdin is not a terminal; cannot prompt for passphrase")
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	buffer, err := secret.FromBytes(raw)
	if err != nil {
		secret.Zero(raw)
		return nil, err
	}
	return buffer, nil
}

// writeFileAtomic writes via a temp file plus rename so an interrupted
// run never leaves a partial container on disk.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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
