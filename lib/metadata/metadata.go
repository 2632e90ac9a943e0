// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata extracts descriptive fields from image bytes for
// inclusion in a container manifest. Extraction is best effort and
// never fails: an image that cannot be decoded still yields a
// synthetic field set so every container carries some provenance
// context. The engine signs whatever this package produces; it does
// not interpret the fields.
package metadata

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"time"

	// Registered for image.DecodeConfig sniffing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Extract returns the metadata field map for image bytes. Dimension
// and format fields come from the image header; EXIF fields, when
// present, are flattened in raw form under an "exif_" prefix. When
// the bytes do not decode as a known image, or carry no EXIF, the
// synthetic fields mark the gap instead of failing.
func Extract(data []byte) map[string]string {
	fields := make(map[string]string)

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return synthetic(fields, 0, 0)
	}
	fields["width"] = strconv.Itoa(config.Width)
	fields["height"] = strconv.Itoa(config.Height)
	fields["format"] = format

	parsed, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return synthetic(fields, config.Width, config.Height)
	}

	collector := exifCollector{fields: fields}
	if err := parsed.Walk(&collector); err != nil || !collector.found {
		return synthetic(fields, config.Width, config.Height)
	}
	return fields
}

// exifCollector flattens every EXIF field into the map in its raw
// string form, mirroring a straight dump of the tag dictionary.
type exifCollector struct {
	fields map[string]string
	found  bool
}

func (c *exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.fields["exif_"+string(name)] = tag.String()
	c.found = true
	return nil
}

// synthetic fills the minimal field set used when no real metadata is
// available. Width and height are kept when the image header decoded;
// format stays at whatever decoding established, defaulting to
// Unknown.
func synthetic(fields map[string]string, width, height int) map[string]string {
	if _, ok := fields["width"]; !ok {
		fields["width"] = strconv.Itoa(width)
		fields["height"] = strconv.Itoa(height)
	}
	if _, ok := fields["format"]; !ok {
		fields["format"] = "Unknown"
	}
	fields["datetime_generated"] = time.Now().UTC().Format(time.RFC3339)
	fields["source"] = "synthetic"
	return fields
}

// Summary renders the handful of fields worth showing in CLI output.
// Unknown dimensions render as "?".
func Summary(fields map[string]string) string {
	width, height := fields["width"], fields["height"]
	if width == "" {
		width = "?"
	}
	if height == "" {
		height = "?"
	}
	format := fields["format"]
	if format == "" {
		format = "Unknown"
	}
	if fields["source"] == "synthetic" {
		return fmt.Sprintf("%s %sx%s (synthetic metadata)", format, width, height)
	}
	return fmt.Sprintf("%s %sx%s, %d fields", format, width, height, len(fields))
}
