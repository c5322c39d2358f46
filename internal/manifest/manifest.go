// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

const (
	// DefaultVersion is used when a package does not declare a version.
	DefaultVersion = "0.0.1"
	// LibSuffix is appended to a package name to form its library name.
	LibSuffix = "_lib"
)

// ErrUnknownPackage is returned when a requested package is not in the manifest.
var ErrUnknownPackage = errors.New("unknown package")

type (
	// Manifest is a decoded package manifest.
	Manifest struct {
		// Path is the file the manifest was loaded from.
		Path string `json:"-"`
		// Packages maps package names to their descriptors.
		Packages map[string]*Package `json:"packages"`
	}

	// Package describes one deployable package.
	Package struct {
		// Name is the package's key in the manifest.
		Name string `json:"-"`
		// Version is the package version string.
		Version string `json:"version"`
		// Compile asks the installer to compile scripts on the vessel.
		Compile bool `json:"compile"`
		// Boot is the kOS path of the package's boot script.
		Boot string `json:"boot"`
		// OfflineScripts are entry scripts resolved and bundled into the package.
		OfflineScripts []string `json:"offline_scripts"`
		// OnlineScripts are entry scripts that get thin wrappers calling back
		// into the archive.
		OnlineScripts []string `json:"online_scripts"`
		// PersistentData requests a state.json file for the installer.
		PersistentData bool `json:"persistent_data"`
		// BootName overrides the generated boot file name.
		BootName string `json:"boot_name,omitempty"`
		// PostBuild is a shell snippet run after the package is written.
		PostBuild string `json:"post_build,omitempty"`
	}

	// UnknownPackageError is returned when a requested package is not in the manifest.
	// It wraps ErrUnknownPackage for errors.Is() compatibility.
	UnknownPackageError struct {
		Name      string
		Available []string
	}
)

// Error implements the error interface.
func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package %q (available: %v)", e.Name, e.Available)
}

// Unwrap returns ErrUnknownPackage for errors.Is() compatibility.
func (e *UnknownPackageError) Unwrap() error { return ErrUnknownPackage }

// Names returns the package names in sorted order.
func (m *Manifest) Names() []string {
	return slices.Sorted(maps.Keys(m.Packages))
}

// Sorted returns every package in name order.
func (m *Manifest) Sorted() []*Package {
	names := m.Names()
	out := make([]*Package, 0, len(names))
	for _, name := range names {
		out = append(out, m.Packages[name])
	}
	return out
}

// Get returns the named package.
func (m *Manifest) Get(name string) (*Package, error) {
	pkg, ok := m.Packages[name]
	if !ok {
		return nil, &UnknownPackageError{Name: name, Available: m.Names()}
	}
	return pkg, nil
}

// Select returns the named packages in the order given, or every package in
// name order when names is empty. Duplicate names are returned once.
func (m *Manifest) Select(names ...string) ([]*Package, error) {
	if len(names) == 0 {
		return m.Sorted(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]*Package, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		pkg, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// LibName returns the name of the package's consolidated library.
func (p *Package) LibName() string {
	return p.Name + LibSuffix
}

// BootFileName returns the name of the generated installer boot file.
func (p *Package) BootFileName() string {
	if p.BootName != "" {
		return p.BootName
	}
	return "boot_" + p.Name + ".ks"
}
