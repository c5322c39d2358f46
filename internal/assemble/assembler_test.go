// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/kospack/kospack/internal/resolve"
	"github.com/kospack/kospack/pkg/kscript"
)

type memoryArchive map[string]string

func (m memoryArchive) Load(path string) (kscript.SourceUnit, error) {
	text, ok := m[path]
	if !ok {
		return kscript.SourceUnit{}, fmt.Errorf("load %s: %w", path, kscript.ErrUnitNotFound)
	}
	return kscript.NewSourceUnit(path, text), nil
}

func TestAssemble_FixpointDiscovery(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{
		"0:/src/main.ks": `runoncepath("0:/lib/nav.ks").
runpath("0:/src/stage.ks", 2).
print heading_to(90).
`,
		"0:/src/stage.ks": `runoncepath("0:/lib/nav.ks").
runpath("0:/src/main.ks").
print burn().
`,
		"0:/lib/nav.ks": `function heading_to {
  parameter h.
  return heading(h, 90).
}
function burn {
  return 1.
}
`,
	}

	bundle, err := New(archive).Assemble(context.Background(), Input{
		LibName: "ship_lib",
		Offline: []string{"0:/src/main.ks"},
	})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	var paths []string
	for _, s := range bundle.Scripts {
		paths = append(paths, s.Path)
	}
	if want := []string{"0:/src/main.ks", "0:/src/stage.ks"}; !slices.Equal(paths, want) {
		t.Errorf("processed = %v, want %v", paths, want)
	}

	main := bundle.Scripts[0]
	wantText := `runoncepath("1:/lib/ship_lib").
runpath("1:/stage", 2).
print heading_to(90).
`
	if main.Text != wantText {
		t.Errorf("main rewritten text:\n got: %q\nwant: %q", main.Text, wantText)
	}
	if main.Name != "main" {
		t.Errorf("main Name = %q", main.Name)
	}
	if !slices.Equal(main.Used, []string{"HEADING_TO"}) {
		t.Errorf("main Used = %v", main.Used)
	}

	if got, want := bundle.Library.Names(), []string{"HEADING_TO", "BURN"}; !slices.Equal(got, want) {
		t.Errorf("library = %v, want %v", got, want)
	}

	wantEdges := []Edge{
		{From: "0:/src/main.ks", To: "0:/src/stage.ks"},
		{From: "0:/src/stage.ks", To: "0:/src/main.ks"},
	}
	if !slices.Equal(bundle.Edges, wantEdges) {
		t.Errorf("Edges = %v, want %v", bundle.Edges, wantEdges)
	}
	if len(bundle.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", bundle.Diagnostics)
	}
}

func TestAssemble_LibraryListsCalleesBeforeCallers(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{
		"0:/src/go.ks": "runoncepath(\"0:/lib/chain.ks\").\nouter().\n",
		"0:/lib/chain.ks": `function outer {
  return inner() * 2.
}
function inner {
  return 21.
}
`,
	}

	bundle, err := New(archive).Assemble(context.Background(), Input{LibName: "p_lib", Offline: []string{"0:/src/go.ks"}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	inner := strings.Index(bundle.LibraryText, "function inner")
	outer := strings.Index(bundle.LibraryText, "function outer")
	if inner < 0 || outer < 0 {
		t.Fatalf("library text missing definitions:\n%s", bundle.LibraryText)
	}
	if inner > outer {
		t.Errorf("inner must be defined before its caller outer:\n%s", bundle.LibraryText)
	}
	if !strings.HasPrefix(bundle.LibraryText, "// p_lib - Generated library script\n@lazyGlobal off.\n\n") {
		t.Errorf("unexpected library header:\n%s", bundle.LibraryText)
	}
}

func TestAssemble_LaterScriptOverwritesKeepingPosition(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{
		"0:/a.ks":     "runoncepath(\"0:/lib/1.ks\").\nf(). g().\n",
		"0:/b.ks":     "runoncepath(\"0:/lib/2.ks\").\nf().\n",
		"0:/lib/1.ks": "function f {\n  return 1.\n}\nfunction g {\n  return 1.\n}\n",
		"0:/lib/2.ks": "function f {\n  return 2.\n}\n",
	}

	bundle, err := New(archive).Assemble(context.Background(), Input{LibName: "x_lib", Offline: []string{"0:/a.ks", "0:/b.ks"}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	if got := bundle.Library.Names(); !slices.Equal(got, []string{"F", "G"}) {
		t.Errorf("library order = %v, want [F G]", got)
	}
	f, _ := bundle.Library.Get("f")
	if !strings.Contains(f.Code, "return 2.") {
		t.Errorf("F should come from the later script's library, got %q", f.Code)
	}
}

func TestAssemble_MissingRunTargetIsWarning(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{
		"0:/main.ks": "runpath(\"0:/ghost.ks\").\n",
	}

	bundle, err := New(archive).Assemble(context.Background(), Input{LibName: "x_lib", Offline: []string{"0:/main.ks"}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if len(bundle.Scripts) != 1 {
		t.Errorf("expected only main to be processed, got %d scripts", len(bundle.Scripts))
	}
	if len(bundle.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", bundle.Diagnostics)
	}
	d := bundle.Diagnostics[0]
	if d.Code != resolve.CodeScriptNotFound || d.Path != "0:/ghost.ks" || d.Severity != resolve.SeverityWarning {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestAssemble_MissingEntryIsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input Input
		kind  string
	}{
		{"offline", Input{LibName: "x_lib", Offline: []string{"0:/nope.ks"}}, "offline"},
		{"online", Input{LibName: "x_lib", Online: []string{"0:/nope.ks"}}, "online"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(memoryArchive{}).Assemble(context.Background(), tt.input)
			if !errors.Is(err, ErrEntryScript) {
				t.Fatalf("expected ErrEntryScript, got %v", err)
			}
			if !errors.Is(err, kscript.ErrUnitNotFound) {
				t.Errorf("expected the load error to be wrapped, got %v", err)
			}
			var entryErr *EntryError
			if !errors.As(err, &entryErr) || entryErr.Kind != tt.kind {
				t.Errorf("expected *EntryError of kind %q, got %v", tt.kind, err)
			}
		})
	}
}

func TestAssemble_WithLayout(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{"0:/m.ks": "runpath(\"0:/x/y.ks\"). runoncepath(\"0:/l.ks\").\n"}
	a := New(archive, WithLayout(kscript.Layout{LibRoot: "1:/pkg/lib", ScriptRoot: "1:/pkg"}))

	bundle, err := a.Assemble(context.Background(), Input{LibName: "m_lib", Offline: []string{"0:/m.ks"}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	want := "runpath(\"1:/pkg/y\"). runoncepath(\"1:/pkg/lib/m_lib\").\n"
	if bundle.Scripts[0].Text != want {
		t.Errorf("text = %q, want %q", bundle.Scripts[0].Text, want)
	}
}

func TestAssemble_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(memoryArchive{"0:/m.ks": ""}).Assemble(ctx, Input{LibName: "m_lib", Offline: []string{"0:/m.ks"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAssemble_Wrappers(t *testing.T) {
	t.Parallel()

	archive := memoryArchive{
		"0:/src/launch.ks": `declare parameter apo, incl is 0.
function helper {
  parameter inner.
}
parameter profile.
`,
	}

	bundle, err := New(archive).Assemble(context.Background(), Input{LibName: "l_lib", Online: []string{"0:/src/launch.ks"}})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if len(bundle.Wrappers) != 1 {
		t.Fatalf("expected 1 wrapper, got %d", len(bundle.Wrappers))
	}
	w := bundle.Wrappers[0]
	want := "declare parameter apo, incl is 0.\nparameter profile.\nrunPath(\"0:/src/launch.ks\", apo, incl, profile).\n"
	if w.Text != want {
		t.Errorf("wrapper text:\n got: %q\nwant: %q", w.Text, want)
	}
	if w.Name != "launch" {
		t.Errorf("wrapper Name = %q, want launch", w.Name)
	}
}
