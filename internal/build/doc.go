// SPDX-License-Identifier: MPL-2.0

// Package build writes manifest packages to disk.
//
// Each package gets its own directory under the build root:
//
//	<build>/<name>/
//	  boot/default.ks           copy of the package boot script
//	  lib/<name>_lib.ks         consolidated library
//	  offline_scripts/<n>.ks    rewritten entry and runpath scripts
//	  online_scripts/<n>.ks     wrappers calling back into the archive
//	  state.json                only with persistent_data
//
// plus an installer boot file in the boot directory. Packages share no state,
// so BuildAll builds them concurrently.
package build
