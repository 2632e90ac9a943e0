// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads tool configuration. The file is located by the
// PIXEALED_CONFIG environment variable or a --config flag; there is no
// automatic discovery, so every run's configuration is explicit. A
// missing file is not an error: everything has a working default under
// ${HOME}/.pixealed.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration.
type Config struct {
	// Identity configures where the device identity material lives.
	Identity IdentityConfig `yaml:"identity"`

	// Output configures where pack results are written.
	Output OutputConfig `yaml:"output"`
}

// IdentityConfig locates the identity files. The passphrase is never
// stored in configuration; it is prompted for interactively when
// seal_app_secret is set.
type IdentityConfig struct {
	// DeviceIDPath is the device ID file.
	DeviceIDPath string `yaml:"device_id_path"`

	// AppSecretPath is the app secret file.
	AppSecretPath string `yaml:"app_secret_path"`

	// PublicKeyPath is where the device public key is published.
	PublicKeyPath string `yaml:"public_key_path"`

	// SealAppSecret stores the app secret age-sealed under a
	// passphrase instead of as a plaintext 0600 file.
	SealAppSecret bool `yaml:"seal_app_secret"`
}

// OutputConfig configures pack output.
type OutputConfig struct {
	// Dir is where containers and bundles are written. Defaults to
	// the current directory.
	Dir string `yaml:"dir"`

	// Bundle also writes a zip bundle (container plus public key)
	// next to each container.
	Bundle bool `yaml:"bundle"`
}

// Default returns the built-in configuration: identity material under
// ${HOME}/.pixealed, output in the current directory.
func Default() *Config {
	return &Config{
		Identity: IdentityConfig{
			DeviceIDPath:  "${HOME}/.pixealed/device_id",
			AppSecretPath: "${HOME}/.pixealed/app_secret",
			PublicKeyPath: "${HOME}/.pixealed/device.pub",
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// Load returns the configuration from the PIXEALED_CONFIG file, or the
// defaults when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv("PIXEALED_CONFIG")
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, merged over the defaults.
// Environment variables do not override file values; the only
// expansion performed is ${HOME} and similar variables in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that can only be
// mistakes.
func (c *Config) Validate() error {
	if c.Identity.DeviceIDPath == "" {
		return fmt.Errorf("identity.device_id_path must not be empty")
	}
	if c.Identity.AppSecretPath == "" {
		return fmt.Errorf("identity.app_secret_path must not be empty")
	}
	if c.Identity.DeviceIDPath == c.Identity.AppSecretPath {
		return fmt.Errorf("identity.device_id_path and identity.app_secret_path must differ")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Identity.DeviceIDPath = os.ExpandEnv(c.Identity.DeviceIDPath)
	c.Identity.AppSecretPath = os.ExpandEnv(c.Identity.AppSecretPath)
	c.Identity.PublicKeyPath = os.ExpandEnv(c.Identity.PublicKeyPath)
	c.Output.Dir = os.ExpandEnv(c.Output.Dir)
}
