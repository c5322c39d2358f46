// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kospack/kospack/internal/issue"
	"github.com/kospack/kospack/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.BuildDir != "build" || cfg.BootDir != "boot" {
		t.Errorf("unexpected dirs %q / %q", cfg.BuildDir, cfg.BootDir)
	}
	if cfg.Installer != "0:/src/pacman/install.ks" {
		t.Errorf("Installer = %q", cfg.Installer)
	}
	if cfg.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", cfg.Jobs)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("unexpected UI defaults %+v", cfg.UI)
	}
	if !slices.Equal(cfg.Watch.Patterns, []string{"**/*.ks", "manifest.*"}) {
		t.Errorf("Watch.Patterns = %v", cfg.Watch.Patterns)
	}
	if cfg.Watch.DebounceDuration() != 500*time.Millisecond {
		t.Errorf("DebounceDuration() = %v", cfg.Watch.DebounceDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config file, got %q", path)
	}
	if cfg.BuildDir != DefaultBuildDir || cfg.Jobs != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
build_dir: "out"
jobs: 4
ui: color_scheme: "dark"
watch: debounce: "2s"
`)

	cfg, path, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.BuildDir != "out" || cfg.Jobs != 4 || cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.BootDir != DefaultBootDir {
		t.Errorf("unset keys should keep defaults, BootDir = %q", cfg.BootDir)
	}
	if cfg.Watch.DebounceDuration() != 2*time.Second {
		t.Errorf("debounce = %v", cfg.Watch.DebounceDuration())
	}
	if !slices.Equal(cfg.Watch.Patterns, DefaultWatchPatterns()) {
		t.Errorf("patterns = %v", cfg.Watch.Patterns)
	}
}

func TestLoad_CustomPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `installer: "0:/sys/setup.ks"`)
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Installer != "0:/sys/setup.ks" {
		t.Errorf("Installer = %q", cfg.Installer)
	}
}

func TestLoad_CustomPathNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
	}
	if ae.Operation != "load configuration" || ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("unexpected actionable error %+v", ae)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"jobs below range", "jobs: 0", "jobs"},
		{"unknown key", "parallelism: 3", "parallelism"},
		{"bad color scheme", `ui: color_scheme: "neon"`, "color_scheme"},
		{"bad installer volume", `installer: "1:/install.ks"`, "installer"},
		{"bad debounce", `watch: debounce: "soon"`, "debounce"},
		{"syntax", "jobs: {{", "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Cause == nil {
				t.Fatalf("expected actionable error with a cause, got %v", err)
			}
			if !strings.Contains(ae.Cause.Error(), tt.field) {
				t.Errorf("cause %q should mention %q", ae.Cause, tt.field)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("KOSPACK_JOBS", "3")
	t.Setenv("KOSPACK_UI_VERBOSE", "true")
	t.Setenv("KOSPACK_BUILD_DIR", "dist")

	dir := t.TempDir()
	writeConfig(t, dir, "jobs: 8\nbuild_dir: \"out\"\n")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Jobs != 3 || !cfg.UI.Verbose || cfg.BuildDir != "dist" {
		t.Errorf("environment should win over file and defaults: %+v", cfg)
	}
}

func TestLoad_InvalidEnvironmentOverride(t *testing.T) {
	t.Setenv("KOSPACK_JOBS", "0")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := FilePath(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := CreateDefaultConfig(path, false); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if err := CreateDefaultConfig(path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second create without force should fail with ErrConfigExists, got %v", err)
	}
	if err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("create with force should overwrite: %v", err)
	}

	cfg, loaded, err := LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config should load: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded %q, want %q", loaded, path)
	}
	def := DefaultConfig()
	if cfg.BuildDir != def.BuildDir || cfg.Installer != def.Installer || !slices.Equal(cfg.Watch.Patterns, def.Watch.Patterns) {
		t.Errorf("round trip mismatch: %+v", cfg)
	}
}

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if ok, errs := cs.IsValid(); !ok || len(errs) > 0 {
			t.Errorf("ColorScheme(%q).IsValid() = %v, %v", cs, ok, errs)
		}
	}
	ok, errs := ColorScheme("neon").IsValid()
	if ok || len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("expected invalid color scheme, got %v %v", ok, errs)
	}
	if ColorScheme("").GlamourStyle() != "auto" || ColorSchemeLight.GlamourStyle() != "light" {
		t.Error("unexpected glamour style mapping")
	}
}

func TestWatchConfig_DebounceFallback(t *testing.T) {
	t.Parallel()

	if got := (WatchConfig{Debounce: "-1s"}).DebounceDuration(); got != 500*time.Millisecond {
		t.Errorf("negative debounce should fall back to default, got %v", got)
	}
	if got := (WatchConfig{Debounce: "x"}).DebounceDuration(); got != 500*time.Millisecond {
		t.Errorf("invalid debounce should fall back to default, got %v", got)
	}
}

func TestFilePath_UserConfigDir(t *testing.T) {
	home := t.TempDir()
	testutil.SetConfigHome(t, home)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if !strings.HasPrefix(dir, home) || filepath.Base(dir) != AppName {
		t.Errorf("ConfigDir() = %q, want %s below %q", dir, AppName, home)
	}

	path, err := FilePath("")
	if err != nil {
		t.Fatalf("FilePath() error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("FilePath() = %q, want inside %q", path, dir)
	}
}
