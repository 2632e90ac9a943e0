// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// pxl is the Pixealed command-line tool. It packs images into signed
// .pxl containers, verifies containers, and manages the device
// identity.
//
// Subcommands:
//
//	pack     pack an image into a container (optionally a zip bundle)
//	verify   verify a container or bundle
//	show     print a container's manifest and metadata
//	keygen   initialize the device identity and publish the public key
//	version  print version information
//
// Configuration is read from the file named by PIXEALED_CONFIG (or
// --config); without one, identity material lives under ~/.pixealed
// and output goes to the current directory.
package main
