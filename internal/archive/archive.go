// SPDX-License-Identifier: MPL-2.0

// Package archive maps kOS volume paths onto a host directory that mirrors
// the kOS archive volume (volume 0) and reads kerboscript files from it.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kospack/kospack/pkg/kscript"
)

const (
	// ArchiveVolume is the kOS volume prefix of the archive.
	ArchiveVolume = "0:"
	// ScriptExt is the kerboscript source extension.
	ScriptExt = ".ks"
)

var (
	// ErrNotArchivePath is returned for paths on a volume other than the archive.
	ErrNotArchivePath = errors.New("path is not on the archive volume")
	// ErrEscapesArchive is returned for paths that climb above the archive root.
	ErrEscapesArchive = errors.New("path escapes the archive root")
	// ErrUndecodable is returned when a file is not valid text.
	ErrUndecodable = errors.New("file is not valid UTF-8 text")
)

type (
	// FS is a kOS archive rooted at a host directory.
	FS struct {
		root string
	}

	// PathError records a failed kOS path operation.
	PathError struct {
		Op   string
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error { return e.Err }

// New returns an FS rooted at dir, which must be an existing directory.
func New(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve archive root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("archive root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive root %s is not a directory", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute host path of the archive root.
func (a *FS) Root() string {
	return a.root
}

// Relative converts a kOS path to a clean slash-separated path relative to the
// archive root. "0:/a/b.ks", "0:a/b.ks" and "a/b.ks" are equivalent. Paths on
// other volumes fail with ErrNotArchivePath.
func Relative(kosPath string) (string, error) {
	p := strings.TrimSpace(kosPath)
	if i := strings.Index(p, ":"); i >= 0 {
		if p[:i+1] != ArchiveVolume {
			return "", &PathError{Op: "resolve", Path: kosPath, Err: ErrNotArchivePath}
		}
		p = p[i+1:]
	}
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", &PathError{Op: "resolve", Path: kosPath, Err: kscript.ErrUnitNotFound}
	}
	return p, nil
}

// HostPath returns the host path a kOS path maps to, whether or not it exists.
func (a *FS) HostPath(kosPath string) (string, error) {
	rel, err := Relative(kosPath)
	if err != nil {
		return "", err
	}
	host := filepath.Join(a.root, filepath.FromSlash(rel))
	if r, err := filepath.Rel(a.root, host); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", &PathError{Op: "resolve", Path: kosPath, Err: ErrEscapesArchive}
	}
	return host, nil
}

// Candidates returns the archive-relative files a kOS path may refer to, in
// lookup order: the path with its extension replaced by .ks, then the path as
// written.
func Candidates(kosPath string) ([]string, error) {
	rel, err := Relative(kosPath)
	if err != nil {
		return nil, err
	}
	withExt := strings.TrimSuffix(rel, path.Ext(rel)) + ScriptExt
	if withExt == rel {
		return []string{rel}, nil
	}
	return []string{withExt, rel}, nil
}

// Resolve returns the host path of the first existing regular file among the
// candidates of kosPath. It wraps kscript.ErrUnitNotFound when none exists.
func (a *FS) Resolve(kosPath string) (string, error) {
	candidates, err := Candidates(kosPath)
	if err != nil {
		return "", err
	}
	for _, rel := range candidates {
		host, err := a.HostPath(rel)
		if err != nil {
			return "", &PathError{Op: "resolve", Path: kosPath, Err: err}
		}
		if info, err := os.Stat(host); err == nil && info.Mode().IsRegular() {
			return host, nil
		}
	}
	return "", &PathError{Op: "resolve", Path: kosPath, Err: kscript.ErrUnitNotFound}
}

// Load resolves kosPath and reads it as text. The returned unit keeps kosPath
// as its Path.
func (a *FS) Load(kosPath string) (kscript.SourceUnit, error) {
	host, err := a.Resolve(kosPath)
	if err != nil {
		return kscript.SourceUnit{}, err
	}
	text, err := ReadText(host)
	if err != nil {
		return kscript.SourceUnit{}, &PathError{Op: "load", Path: kosPath, Err: err}
	}
	return kscript.NewSourceUnit(strings.TrimSpace(kosPath), text), nil
}

// ReadText reads a host file as text. A UTF-8 or UTF-16 byte order mark
// selects the decoding and is removed; without one the content must be UTF-8.
func ReadText(hostPath string) (string, error) {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return "", err
	}
	return DecodeText(data)
}

// DecodeText decodes file content the way ReadText does.
func DecodeText(data []byte) (string, error) {
	bom := unicode.BOMOverride(transform.Nop)
	decoded, _, err := transform.Bytes(bom, data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if !utf8.Valid(decoded) {
		return "", ErrUndecodable
	}
	return string(decoded), nil
}
