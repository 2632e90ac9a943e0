// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the canonical CBOR encoding used throughout
// Pixealed.
//
// The .pxl manifest is signed over its serialized bytes, so any two
// implementations must produce identical bytes for identical logical
// content. The encoder is configured with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Field insertion order, map iteration order,
// and formatting whitespace cannot influence the output.
//
// The decoder accepts standard CBOR and ignores unknown fields for
// forward compatibility. Untyped targets decode maps as
// map[string]any; the manifest itself always decodes into its concrete
// struct.
//
// Struct types that cross this boundary carry json tags —
// fxamacker/cbor reads json tags as a fallback, so one tag controls
// field naming for both the canonical CBOR form and any JSON debug
// output the CLI produces.
package codec
