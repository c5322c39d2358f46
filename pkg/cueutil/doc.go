// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates and decodes documents against embedded CUE schemas.
//
// Every document kospack reads (the package manifest in any of its formats and
// the user configuration) goes through the same flow:
//
//  1. Compile the embedded schema
//  2. Compile (CUE) or encode (YAML, TOML) the user data and unify it with
//     the schema's root definition
//  3. Validate and decode to a Go struct, with schema defaults applied
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Manifest](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Manifest",
//	    cueutil.WithFilename("manifest.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes the CUE path of the bad field
//	}
//	return result.Value, nil
package cueutil
