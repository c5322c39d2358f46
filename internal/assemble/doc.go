// SPDX-License-Identifier: MPL-2.0

// Package assemble turns the entry scripts of one package into deployable
// artifacts: rewritten scripts, a single tree-shaken library and thin
// parameter-forwarding wrappers for online entry points.
//
// Script discovery is a fixpoint over runpath targets. Every script is
// processed once, in first-discovered order, and the functions each script
// uses are merged into one package-wide accumulator owned by the Bundle
// being built. Nothing is written to disk here.
package assemble
