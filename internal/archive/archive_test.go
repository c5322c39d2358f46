// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kospack/kospack/pkg/kscript"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"0:/src/main.ks", "src/main.ks", nil},
		{"0:src/main.ks", "src/main.ks", nil},
		{"  0:/lib/x  ", "lib/x", nil},
		{"lib/x.ks", "lib/x.ks", nil},
		{`0:\lib\win.ks`, "lib/win.ks", nil},
		{"0:/a/../b.ks", "b.ks", nil},
		{"0:/../../etc/passwd", "etc/passwd", nil},
		{"1:/lib/pkg_lib", "", ErrNotArchivePath},
		{"0:/", "", kscript.ErrUnitNotFound},
	}

	for _, tt := range tests {
		got, err := Relative(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Relative(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Relative(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"0:/lib/math.ks", []string{"lib/math.ks"}},
		{"0:/lib/math", []string{"lib/math.ks", "lib/math"}},
		{"0:/lib/math.txt", []string{"lib/math.ks", "lib/math.txt"}},
		{"0:/lib/v1.2/math", []string{"lib/v1.2/math.ks", "lib/v1.2/math"}},
	}

	for _, tt := range tests {
		got, err := Candidates(tt.in)
		if err != nil {
			t.Fatalf("Candidates(%q) error: %v", tt.in, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Candidates(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFS_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "lib/math.ks", []byte("function sq { parameter n. return n*n. }\n"))
	writeFile(t, root, "data/readme", []byte("plain"))

	fs, err := New(root)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	unit, err := fs.Load("0:/lib/math")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if unit.Path != "0:/lib/math" {
		t.Errorf("unit.Path = %q, want the requested path", unit.Path)
	}
	if unit.Text != "function sq { parameter n. return n*n. }\n" {
		t.Errorf("unit.Text = %q", unit.Text)
	}

	if _, err := fs.Load("0:/data/readme"); err != nil {
		t.Errorf("path as written should be found when no .ks variant exists: %v", err)
	}

	_, err = fs.Load("0:/lib/missing.ks")
	if !errors.Is(err, kscript.ErrUnitNotFound) {
		t.Errorf("expected ErrUnitNotFound, got %v", err)
	}

	_, err = fs.Load("0:/lib")
	if !errors.Is(err, kscript.ErrUnitNotFound) {
		t.Errorf("directories must not resolve, got %v", err)
	}
}

func TestFS_LoadDecodesBOM(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "utf8.ks", append([]byte{0xEF, 0xBB, 0xBF}, "print 1."...))
	writeFile(t, root, "utf16.ks", []byte{0xFF, 0xFE, 'o', 0, 'k', 0, '.', 0})
	writeFile(t, root, "binary.ks", []byte{0xC3, 0x28, 0xFF})

	fs, err := New(root)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"0:/utf8.ks", "print 1."},
		{"0:/utf16.ks", "ok."},
	}
	for _, tt := range tests {
		unit, err := fs.Load(tt.path)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", tt.path, err)
		}
		if unit.Text != tt.want {
			t.Errorf("Load(%q).Text = %q, want %q", tt.path, unit.Text, tt.want)
		}
	}

	_, err = fs.Load("0:/binary.ks")
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
	if errors.Is(err, kscript.ErrUnitNotFound) {
		t.Error("undecodable file must not be reported as missing")
	}
}

func TestNew_RejectsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "file", []byte("x"))
	if _, err := New(filepath.Join(root, "file")); err == nil {
		t.Error("expected error for a regular file root")
	}
	if _, err := New(filepath.Join(root, "nope")); err == nil {
		t.Error("expected error for a missing root")
	}
}
