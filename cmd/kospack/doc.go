// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the kospack command-line interface.
//
// The root command is assembled by NewRootCommand around an App, which holds
// the output writers and the configuration provider. Every subcommand loads
// the configuration, archive and manifest it needs through a session, so the
// commands themselves only orchestrate the internal packages and render their
// results.
package cmd
