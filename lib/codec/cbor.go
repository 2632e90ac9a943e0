// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2). Same logical data always produces
// identical bytes — the property the manifest signature depends on.
var encMode cbor.EncMode

// decMode is the CBOR decoder. Unknown fields are ignored so that a
// version-1 verifier can still decode manifests written by a future
// version that added fields (the signature check still covers them:
// verification re-encodes the decoded manifest, so unknown fields
// would fail the signature, which is the correct outcome).
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Manifest metadata is map<string,string>, and all debug
		// decoding targets are map[string]any. CBOR's default for
		// untyped targets is map[interface{}]interface{}, which is
		// hostile to the rest of the codebase.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. Used by the CLI's show command to dump raw manifests.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
