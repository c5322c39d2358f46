// SPDX-License-Identifier: MPL-2.0

// Package config handles kospack configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the kospack configuration
// directory ($XDG_CONFIG_HOME/kospack on Linux, ~/Library/Application Support/kospack
// on macOS, %APPDATA%\kospack on Windows), or from config.cue in the current
// directory, or from an explicit --config path. Files are validated against
// the embedded config_schema.cue. KOSPACK_* environment variables override
// file values (e.g. KOSPACK_JOBS, KOSPACK_UI_VERBOSE).
package config
