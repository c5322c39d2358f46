// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultBuildDir is the build output directory, relative to the archive root.
	DefaultBuildDir = "build"
	// DefaultBootDir receives the generated installer boot files.
	DefaultBootDir = "boot"
	// DefaultInstaller is the kOS path of the package installer script.
	DefaultInstaller = "0:/src/pacman/install.ks"
	// DefaultDebounce is the watch mode debounce delay.
	DefaultDebounce = "500ms"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is returned when a decoded configuration is inconsistent.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config holds the kospack configuration.
	Config struct {
		// BuildDir is where package output is written, relative to the archive root.
		BuildDir string `json:"build_dir" mapstructure:"build_dir"`
		// BootDir receives the installer boot files, relative to the archive root.
		BootDir string `json:"boot_dir" mapstructure:"boot_dir"`
		// Installer is the kOS path generated boot files run.
		Installer string `json:"installer" mapstructure:"installer"`
		// Jobs is the number of packages built concurrently.
		Jobs int `json:"jobs" mapstructure:"jobs"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures build --watch.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// ColorScheme selects the glamour and lipgloss palette.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures build --watch.
	WatchConfig struct {
		// Patterns are doublestar globs, relative to the archive root, that trigger a rebuild.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Debounce is a time.ParseDuration string.
		Debounce string `json:"debounce" mapstructure:"debounce"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle returns the glamour style name for the color scheme.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark, ColorSchemeLight:
		return string(cs)
	default:
		return "auto"
	}
}

// DebounceDuration parses Debounce, falling back to the default on error.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultDebounce)
	}
	return d
}

// Validate checks the constraints viper-merged values must satisfy. Files are
// already checked by the CUE schema; this covers environment overrides.
func (c *Config) Validate() error {
	var errs []error
	if c.BuildDir == "" {
		errs = append(errs, errors.New("build_dir must not be empty"))
	}
	if c.BootDir == "" {
		errs = append(errs, errors.New("boot_dir must not be empty"))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if ok, schemeErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, schemeErrs...)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DefaultWatchPatterns returns the globs that trigger a rebuild by default.
func DefaultWatchPatterns() []string {
	return []string{"**/*.ks", "manifest.*"}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BuildDir:  DefaultBuildDir,
		BootDir:   DefaultBootDir,
		Installer: DefaultInstaller,
		Jobs:      1,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Watch: WatchConfig{
			Patterns: DefaultWatchPatterns(),
			Debounce: DefaultDebounce,
		},
	}
}
