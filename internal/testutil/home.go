// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
)

// SetConfigHome points every platform's user configuration root at dir, so
// config.ConfigDir resolves below it. Tests using it must not call
// t.Parallel.
func SetConfigHome(t *testing.T, dir string) {
	t.Helper()

	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", dir)
}
