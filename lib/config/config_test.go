// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixealed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefaultExpandsHome(t *testing.T) {
	t.Setenv("PIXEALED_CONFIG", "")
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Identity.DeviceIDPath != "/home/tester/.pixealed/device_id" {
		t.Errorf("device ID path = %q", cfg.Identity.DeviceIDPath)
	}
	if cfg.Output.Dir != "." {
		t.Errorf("output dir = %q, want .", cfg.Output.Dir)
	}
	if cfg.Output.Bundle {
		t.Error("bundle output defaults to on, want off")
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path := writeConfig(t, `
identity:
  seal_app_secret: true
output:
  dir: ${HOME}/exports
  bundle: true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !cfg.Identity.SealAppSecret {
		t.Error("seal_app_secret was not read")
	}
	if cfg.Output.Dir != "/home/tester/exports" {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
	// Unset fields keep their defaults.
	if cfg.Identity.DeviceIDPath != "/home/tester/.pixealed/device_id" {
		t.Errorf("device ID path = %q, want the default", cfg.Identity.DeviceIDPath)
	}
}

func TestLoadUsesEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, "output:\n  bundle: true\n")
	t.Setenv("PIXEALED_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Output.Bundle {
		t.Error("config named by PIXEALED_CONFIG was not loaded")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
}

func TestLoadFileMalformedYAML(t *testing.T) {
	path := writeConfig(t, "identity: [not a map")
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty device ID path",
			mutate:  func(c *Config) { c.Identity.DeviceIDPath = "" },
			wantErr: "device_id_path",
		},
		{
			name:    "empty app secret path",
			mutate:  func(c *Config) { c.Identity.AppSecretPath = "" },
			wantErr: "app_secret_path",
		},
		{
			name: "colliding identity paths",
			mutate: func(c *Config) {
				c.Identity.DeviceIDPath = "/tmp/x"
				c.Identity.AppSecretPath = "/tmp/x"
			},
			wantErr: "must differ",
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Output.Dir = "" },
			wantErr: "output.dir",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
