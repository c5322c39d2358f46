// SPDX-License-Identifier: MPL-2.0

// Package manifest loads the package manifest that lists what kospack builds.
//
// A manifest lives in the archive root as manifest.cue, manifest.yaml,
// manifest.yml or manifest.toml. Whatever the format, the document is
// validated against the embedded CUE schema (manifest_schema.cue), which also
// supplies defaults for omitted fields.
package manifest
