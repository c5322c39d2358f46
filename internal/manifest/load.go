// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kospack/kospack/pkg/cueutil"
)

const (
	// FormatCUE is a manifest written in CUE.
	FormatCUE Format = "cue"
	// FormatYAML is a manifest written in YAML.
	FormatYAML Format = "yaml"
	// FormatTOML is a manifest written in TOML.
	FormatTOML Format = "toml"

	// BaseName is the manifest file name without extension.
	BaseName = "manifest"
)

var (
	//go:embed manifest_schema.cue
	schema []byte

	// ErrNotFound is returned when no manifest file exists in a directory.
	ErrNotFound = errors.New("manifest not found")
	// ErrInvalidFormat is returned for manifest files with an unsupported extension.
	ErrInvalidFormat = errors.New("invalid manifest format")

	// searchOrder lists the manifest file names Find tries, in order.
	searchOrder = []string{BaseName + ".cue", BaseName + ".yaml", BaseName + ".yml", BaseName + ".toml"}
)

type (
	// Format identifies a manifest encoding.
	Format string

	// InvalidFormatError is returned when a manifest format is not recognized.
	// It wraps ErrInvalidFormat for errors.Is() compatibility.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid manifest format %q (valid: cue, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// IsValid returns whether the Format is supported,
// and a list of validation errors if it is not.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatCUE, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

// FormatOf returns the manifest format implied by a file name's extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "yml" {
		ext = string(FormatYAML)
	}
	f := Format(ext)
	if ok, errs := f.IsValid(); !ok {
		return "", errs[0]
	}
	return f, nil
}

// Find returns the path of the first manifest file present in dir.
func Find(dir string) (string, error) {
	for _, name := range searchOrder {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNotFound, dir, strings.Join(searchOrder, ", "))
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse validates manifest content in the given format. filename is only
// used in error messages.
func Parse(data []byte, format Format, filename string) (*Manifest, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	var (
		result *cueutil.ParseResult[Manifest]
		err    error
	)
	switch format {
	case FormatCUE:
		result, err = cueutil.ParseAndDecode[Manifest](schema, data, "#Manifest", cueutil.WithFilename(filename))
	case FormatYAML, FormatTOML:
		var raw map[string]any
		if raw, err = decodeRaw(data, format); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		result, err = cueutil.DecodeData[Manifest](schema, raw, "#Manifest", cueutil.WithFilename(filename))
	default:
		return nil, &InvalidFormatError{Value: format}
	}
	if err != nil {
		return nil, err
	}

	m := result.Value
	if m.Packages == nil {
		m.Packages = map[string]*Package{}
	}
	for name, pkg := range m.Packages {
		pkg.Name = name
	}
	return m, nil
}

func decodeRaw(data []byte, format Format) (map[string]any, error) {
	raw := map[string]any{}
	if format == FormatTOML {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return raw, nil
	}
	quoteVersions(doc.Content[0])
	if err := doc.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// quoteVersions forces every packages.<name>.version scalar to a string so
// that unquoted versions such as 1.0 keep their spelling.
func quoteVersions(root *yaml.Node) {
	packages := mappingValue(root, "packages")
	if packages == nil || packages.Kind != yaml.MappingNode {
		return
	}
	for i := 1; i < len(packages.Content); i += 2 {
		if v := mappingValue(packages.Content[i], "version"); v != nil && v.Kind == yaml.ScalarNode {
			v.Tag = "!!str"
		}
	}
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
