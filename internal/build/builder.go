// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/kospack/kospack/internal/archive"
	"github.com/kospack/kospack/internal/assemble"
	"github.com/kospack/kospack/internal/config"
	"github.com/kospack/kospack/internal/hook"
	"github.com/kospack/kospack/internal/manifest"
	"github.com/kospack/kospack/internal/resolve"
)

const (
	// DefaultBootFile is the name of the boot script copy in a package.
	DefaultBootFile = "default.ks"
	// StateFile is the persistent state file written with persistent_data.
	StateFile = "state.json"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Package subdirectories, relative to the package root.
const (
	BootDir           = "boot"
	LibDir            = "lib"
	OfflineScriptsDir = "offline_scripts"
	OnlineScriptsDir  = "online_scripts"
)

// ErrPostBuild is wrapped when a package's post_build hook fails.
var ErrPostBuild = errors.New("post_build hook failed")

type (
	// Option configures a Builder.
	Option func(*Builder)

	// Builder writes packages read from one archive.
	Builder struct {
		archive   *archive.FS
		assembler *assemble.Assembler
		hooks     *hook.Runner
		logger    *log.Logger
		buildDir  string
		bootDir   string
		installer string
		jobs      int
		noClean   bool
	}

	// Report describes one built package.
	Report struct {
		// Package and Version identify the package.
		Package string
		Version string
		// Root is the host path of the package build directory.
		Root string
		// BootFile is the host path of the generated installer boot file.
		BootFile string
		// Files lists every file written, in write order.
		Files []string
		// Bundle is the assembled package.
		Bundle *assemble.Bundle
		// Hook is the post_build outcome, nil when the package has none.
		Hook *hook.Result
	}

	// PackageError is returned when one package fails to build.
	PackageError struct {
		Package string
		Err     error
	}
)

// Error implements the error interface.
func (e *PackageError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Package, e.Err)
}

// Unwrap returns the underlying build error.
func (e *PackageError) Unwrap() error { return e.Err }

// Diagnostics returns the package's resolution findings.
func (r *Report) Diagnostics() []resolve.Diagnostic {
	if r.Bundle == nil {
		return nil
	}
	return r.Bundle.Diagnostics
}

// Functions returns the names of the library functions, in library order.
func (r *Report) Functions() []string {
	if r.Bundle == nil {
		return nil
	}
	return r.Bundle.Library.Names()
}

// WithConfig applies the build settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(b *Builder) {
		b.buildDir = cfg.BuildDir
		b.bootDir = cfg.BootDir
		b.installer = cfg.Installer
		b.jobs = cfg.Jobs
	}
}

// WithJobs sets how many packages BuildAll builds at once.
func WithJobs(n int) Option {
	return func(b *Builder) {
		b.jobs = n
	}
}

// WithNoClean keeps existing package directories instead of recreating them.
func WithNoClean(noClean bool) Option {
	return func(b *Builder) {
		b.noClean = noClean
	}
}

// WithLogger sets the build logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithHookRunner sets the runner used for post_build hooks.
func WithHookRunner(runner *hook.Runner) Option {
	return func(b *Builder) {
		b.hooks = runner
	}
}

// WithAssembler replaces the default assembler.
func WithAssembler(a *assemble.Assembler) Option {
	return func(b *Builder) {
		b.assembler = a
	}
}

// New creates a Builder for the given archive.
func New(fs *archive.FS, opts ...Option) *Builder {
	b := &Builder{
		archive:   fs,
		buildDir:  config.DefaultBuildDir,
		bootDir:   config.DefaultBootDir,
		installer: config.DefaultInstaller,
		jobs:      1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.assembler == nil {
		b.assembler = assemble.New(fs)
	}
	if b.hooks == nil {
		b.hooks = hook.NewRunner()
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	if b.jobs < 1 {
		b.jobs = 1
	}
	return b
}

// BuildRoot returns the host path of the build output directory.
func (b *Builder) BuildRoot() string {
	return b.hostDir(b.buildDir)
}

// BootRoot returns the host path of the installer boot file directory.
func (b *Builder) BootRoot() string {
	return b.hostDir(b.bootDir)
}

// PackageRoot returns the host path of pkg's build directory.
func (b *Builder) PackageRoot(pkg *manifest.Package) string {
	return filepath.Join(b.BuildRoot(), pkg.Name)
}

// BuildAll builds pkgs with at most the configured number of packages in
// flight. Reports are returned in the order of pkgs. The first failure
// cancels packages not yet started.
func (b *Builder) BuildAll(ctx context.Context, pkgs []*manifest.Package) ([]*Report, error) {
	reports := make([]*Report, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.jobs)
	for i, pkg := range pkgs {
		g.Go(func() error {
			report, err := b.Build(gctx, pkg)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

// Build writes one package and runs its post_build hook.
func (b *Builder) Build(ctx context.Context, pkg *manifest.Package) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := b.logger.With("package", pkg.Name)
	logger.Info("building", "version", pkg.Version)

	report := &Report{
		Package: pkg.Name,
		Version: pkg.Version,
		Root:    b.PackageRoot(pkg),
	}
	if pkg.PostBuild != "" {
		if err := hook.Validate(pkg.PostBuild); err != nil {
			return nil, &PackageError{Package: pkg.Name, Err: fmt.Errorf("%w: %w", ErrPostBuild, err)}
		}
	}
	if err := b.prepare(report.Root); err != nil {
		return nil, &PackageError{Package: pkg.Name, Err: err}
	}

	if err := b.writePackage(ctx, pkg, report, logger); err != nil {
		return report, &PackageError{Package: pkg.Name, Err: err}
	}

	if pkg.PostBuild != "" {
		logger.Debug("running post_build hook")
		result, err := b.hooks.Run(ctx, hook.Hook{
			Name:   pkg.Name + " post_build",
			Script: pkg.PostBuild,
			Dir:    report.Root,
			Env: map[string]string{
				"KOSPACK_PACKAGE":      pkg.Name,
				"KOSPACK_VERSION":      pkg.Version,
				"KOSPACK_PACKAGE_ROOT": report.Root,
			},
		})
		report.Hook = result
		if err != nil {
			return report, &PackageError{Package: pkg.Name, Err: fmt.Errorf("%w: %w", ErrPostBuild, err)}
		}
	}

	logger.Info("built", "files", len(report.Files), "functions", report.Bundle.Library.Len())
	return report, nil
}

// prepare creates the package directory tree, removing any previous output
// first unless cleaning is disabled.
func (b *Builder) prepare(root string) error {
	if !b.noClean {
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("clean %s: %w", root, err)
		}
	}
	for _, dir := range []string{BootDir, LibDir, OfflineScriptsDir, OnlineScriptsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), dirPerm); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.MkdirAll(b.BootRoot(), dirPerm)
}

func (b *Builder) writePackage(ctx context.Context, pkg *manifest.Package, report *Report, logger *log.Logger) error {
	boot, err := b.archive.Load(pkg.Boot)
	if err != nil {
		return &assemble.EntryError{Kind: "boot", Path: pkg.Boot, Err: err}
	}
	if err := report.write(filepath.Join(report.Root, BootDir, DefaultBootFile), boot.Text); err != nil {
		return err
	}

	bundle, err := b.assembler.Assemble(ctx, assemble.Input{
		LibName: pkg.LibName(),
		Offline: pkg.OfflineScripts,
		Online:  pkg.OnlineScripts,
	})
	if err != nil {
		return err
	}
	report.Bundle = bundle
	logDiagnostics(logger, bundle.Diagnostics)

	for _, script := range bundle.Scripts {
		logger.Debug("offline script", "path", script.Path, "links", script.LinkPaths, "runs", script.RunPaths, "functions", script.Used)
		if err := report.write(filepath.Join(report.Root, OfflineScriptsDir, script.Name+archive.ScriptExt), script.Text); err != nil {
			return err
		}
	}
	if err := report.write(filepath.Join(report.Root, LibDir, bundle.LibName+archive.ScriptExt), bundle.LibraryText); err != nil {
		return err
	}
	for _, wrapper := range bundle.Wrappers {
		if err := report.write(filepath.Join(report.Root, OnlineScriptsDir, wrapper.Name+archive.ScriptExt), wrapper.Text); err != nil {
			return err
		}
	}

	if pkg.PersistentData {
		state, err := StateJSON(pkg)
		if err != nil {
			return err
		}
		if err := report.write(filepath.Join(report.Root, StateFile), string(state)); err != nil {
			return err
		}
	}

	report.BootFile = filepath.Join(b.BootRoot(), pkg.BootFileName())
	return report.write(report.BootFile, BootFileText(pkg, b.installer))
}

func (r *Report) write(path, text string) error {
	if err := os.WriteFile(path, []byte(text), filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	r.Files = append(r.Files, path)
	return nil
}

func (b *Builder) hostDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(b.archive.Root(), dir)
}

func logDiagnostics(logger *log.Logger, diags []resolve.Diagnostic) {
	for _, d := range diags {
		kv := []any{"code", d.Code, "path", d.Path}
		switch d.Severity {
		case resolve.SeverityError:
			logger.Error(d.Message, kv...)
		case resolve.SeverityWarning:
			logger.Warn(d.Message, kv...)
		default:
			logger.Info(d.Message, kv...)
		}
	}
}
