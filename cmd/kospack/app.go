// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/kospack/kospack/internal/archive"
	"github.com/kospack/kospack/internal/config"
	"github.com/kospack/kospack/internal/issue"
	"github.com/kospack/kospack/internal/manifest"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reads its writers and configuration through it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
		flags  rootFlagValues
		// glamourStyle is the issue rendering style of the last loaded config.
		glamourStyle string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags of the root command.
	rootFlagValues struct {
		archiveDir   string
		manifestPath string
		configPath   string
		verbose      bool
	}

	// session is what a command needs from disk: configuration, archive and,
	// for package commands, the manifest.
	session struct {
		cfg      *config.Config
		cfgPath  string
		archive  *archive.FS
		manifest *manifest.Manifest
		logger   *log.Logger
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:       deps.Config,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
		glamourStyle: config.ColorSchemeAuto.GlamourStyle(),
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// openSession loads the configuration and opens the archive. The manifest
// is loaded when withManifest is set.
func (a *App) openSession(ctx context.Context, withManifest bool) (*session, error) {
	cfg, cfgPath, err := config.LoadWithPath(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}
	a.glamourStyle = cfg.UI.ColorScheme.GlamourStyle()

	s := &session{
		cfg:     cfg,
		cfgPath: cfgPath,
		logger:  a.newLogger(cfg.UI.Verbose || a.flags.verbose),
	}

	root := a.flags.archiveDir
	if root == "" {
		root = "."
	}
	if s.archive, err = archive.New(root); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open archive").
			WithResource(root).
			WithSuggestion("Run kospack from the archive root or pass --archive").
			WithIssue(issue.ArchiveNotFoundId).
			Wrap(err).
			BuildError()
	}

	if withManifest {
		if s.manifest, err = a.loadManifest(s.archive.Root()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadManifest loads the --manifest file, or the first manifest found in the
// archive root.
func (a *App) loadManifest(root string) (*manifest.Manifest, error) {
	path := a.flags.manifestPath
	if path == "" {
		found, err := manifest.Find(root)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("find manifest").
				WithResource(root).
				WithSuggestions(
					"Create manifest.yaml in the archive root",
					"Pass --manifest to use a manifest elsewhere",
				).
				WithIssue(issue.ManifestNotFoundId).
				Wrap(err).
				BuildError()
		}
		path = found
	}

	m, err := manifest.Load(path)
	if err != nil {
		id := issue.ManifestParseErrorId
		if errors.Is(err, os.ErrNotExist) {
			id = issue.ManifestNotFoundId
		}
		return nil, issue.NewErrorContext().
			WithOperation("load manifest").
			WithResource(path).
			WithSuggestion("Check the manifest against the package fields listed in the help below").
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	return m, nil
}

func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "kospack",
		Level:  level,
	})
}

// selectPackages resolves package arguments against the manifest.
func (s *session) selectPackages(names ...string) ([]*manifest.Package, error) {
	pkgs, err := s.manifest.Select(names...)
	if err != nil {
		var unknown *manifest.UnknownPackageError
		suggestion := "Run 'kospack packages' to list the manifest packages"
		if errors.As(err, &unknown) && len(unknown.Available) == 0 {
			suggestion = "The manifest declares no packages yet"
		}
		return nil, issue.NewErrorContext().
			WithOperation("select package").
			WithResource(s.manifest.Path).
			WithSuggestion(suggestion).
			WithIssue(issue.PackageNotFoundId).
			Wrap(err).
			BuildError()
	}
	return pkgs, nil
}

// relPath shortens host paths below the archive root for display.
func (s *session) relPath(path string) string {
	rel, err := filepath.Rel(s.archive.Root(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.stdout, args...)
}
