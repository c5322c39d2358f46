// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by package tests: temporary kOS
// archives and an isolated user configuration directory.
package testutil
