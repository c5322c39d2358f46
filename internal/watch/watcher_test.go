// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type changeRecorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan []string
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan []string, 16)}
}

func (r *changeRecorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.ch <- changed
	return nil
}

func (r *changeRecorder) wait(t *testing.T) []string {
	t.Helper()

	select {
	case changed := <-r.ch:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
		return nil
	}
}

func startWatcher(t *testing.T, cfg Config) context.CancelFunc {
	t.Helper()

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	})
	return cancel
}

func writeFile(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("print 1.\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rec := newChangeRecorder()
	startWatcher(t, Config{Root: root, Debounce: 100 * time.Millisecond, OnChange: rec.onChange})

	for _, name := range []string{"c.ks", "a.ks", "b.ks"} {
		writeFile(t, filepath.Join(root, name))
		time.Sleep(10 * time.Millisecond)
	}

	changed := rec.wait(t)
	time.Sleep(200 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 {
		t.Errorf("expected 1 debounced call, got %d", len(rec.calls))
	}
	if !slices.Equal(changed, []string{"a.ks", "b.ks", "c.ks"}) {
		t.Errorf("changed = %v, want sorted a.ks b.ks c.ks", changed)
	}
}

func TestWatcher_PatternsAndOutputDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, dir := range []string{"build/probe", "src/lib"} {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	rec := newChangeRecorder()
	startWatcher(t, Config{
		Root:     root,
		Patterns: []string{"**/*.ks", "manifest.*"},
		Ignore:   OutputIgnores(root, "build", filepath.Join(root, "boot")),
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})

	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "build", "probe", "main.ks"))
	time.Sleep(200 * time.Millisecond)

	writeFile(t, filepath.Join(root, "src", "lib", "math.ks"))
	changed := rec.wait(t)
	for _, unwanted := range []string{"notes.txt", "build/probe/main.ks"} {
		if slices.Contains(changed, unwanted) {
			t.Errorf("%s should not trigger a rebuild: %v", unwanted, changed)
		}
	}
	if !slices.Contains(changed, "src/lib/math.ks") {
		t.Errorf("expected src/lib/math.ks in %v", changed)
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() returned error on cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
}

func TestWatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Root: t.TempDir(), Patterns: []string{"[invalid"}})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestOutputIgnores(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "archive")
	tests := []struct {
		name string
		dirs []string
		want []string
	}{
		{"relative", []string{"build"}, []string{"build", "build/**"}},
		{"nested", []string{"out/kos/"}, []string{"out/kos", "out/kos/**"}},
		{"absolute inside", []string{filepath.Join(root, "boot")}, []string{"boot", "boot/**"}},
		{"absolute outside", []string{filepath.Join(string(filepath.Separator), "tmp", "boot")}, nil},
		{"root itself", []string{"."}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := OutputIgnores(root, tt.dirs...); !slices.Equal(got, tt.want) {
				t.Errorf("OutputIgnores(%v) = %v, want %v", tt.dirs, got, tt.want)
			}
		})
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{"src/main.ks.swp", true},
		{"backup~", true},
		{"sub/.DS_Store", true},
		{"src/main.ks", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := matchAny(defaultIgnores, tt.path); got != tt.ignored {
				t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}
