// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kospack/kospack/internal/assemble"
	"github.com/kospack/kospack/internal/build"
	"github.com/kospack/kospack/internal/hook"
	"github.com/kospack/kospack/internal/issue"
	"github.com/kospack/kospack/internal/watch"
)

// exitWarnings is the exit status of a --strict build with diagnostics.
const exitWarnings = 2

type buildFlagValues struct {
	watch   bool
	jobs    int
	noClean bool
	strict  bool
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlagValues

	buildCmd := &cobra.Command{
		Use:   "build [package...]",
		Short: "Build manifest packages",
		Long: `Build manifest packages.

Without arguments every package in the manifest is built, in name order.
Output goes to <build_dir>/<package>/ and the installer boot file to
<boot_dir>/boot_<package>.ks, both relative to the archive root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.watch {
				return runBuildWatch(cmd, app, flags, args)
			}
			return runBuild(cmd, app, flags, args)
		},
	}

	buildCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when archive files change")
	buildCmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "packages to build concurrently (default from config)")
	buildCmd.Flags().BoolVar(&flags.noClean, "no-clean", false, "keep existing package output instead of recreating it")
	buildCmd.Flags().BoolVar(&flags.strict, "strict", false, "exit with status 2 when resolution reports diagnostics")

	return buildCmd
}

func runBuild(cmd *cobra.Command, app *App, flags buildFlagValues, args []string) error {
	s, err := app.openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	diagnostics, err := buildOnce(cmd.Context(), app, s, flags, args)
	if err != nil {
		return err
	}
	if flags.strict && diagnostics > 0 {
		return &ExitError{Code: exitWarnings, Err: fmt.Errorf("%d resolution diagnostic(s)", diagnostics)}
	}
	return nil
}

// buildOnce builds the selected packages of the session's manifest and
// prints a summary line per package. It returns the number of diagnostics.
func buildOnce(ctx context.Context, app *App, s *session, flags buildFlagValues, args []string) (int, error) {
	pkgs, err := s.selectPackages(args...)
	if err != nil {
		return 0, err
	}

	opts := []build.Option{
		build.WithConfig(s.cfg),
		build.WithNoClean(flags.noClean),
		build.WithLogger(s.logger),
		build.WithHookRunner(hook.NewRunner(hook.WithOutput(app.stdout, app.stderr))),
	}
	if flags.jobs > 0 {
		opts = append(opts, build.WithJobs(flags.jobs))
	}
	builder := build.New(s.archive, opts...)

	reports, buildErr := builder.BuildAll(ctx, pkgs)

	diagnostics := 0
	for _, report := range reports {
		if report == nil || report.Bundle == nil {
			continue
		}
		diagnostics += len(report.Diagnostics())
		app.println(formatReport(s, report))
	}
	if buildErr != nil {
		return diagnostics, buildError(s, buildErr)
	}
	return diagnostics, nil
}

func formatReport(s *session, r *build.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s -> %s",
		SuccessStyle.Render("✓"),
		TitleStyle.Render(r.Package),
		SubtitleStyle.Render("v"+r.Version),
		PathStyle.Render(s.relPath(r.Root)))

	details := fmt.Sprintf("%d files, %d scripts, %d functions", len(r.Files), len(r.Bundle.Scripts), r.Bundle.Library.Len())
	b.WriteString(" " + VerboseStyle.Render("("+details+")"))

	if n := len(r.Diagnostics()); n > 0 {
		b.WriteString(" " + WarningStyle.Render(fmt.Sprintf("%d warning(s)", n)))
	}
	return b.String()
}

func buildError(s *session, err error) error {
	var pkgErr *build.PackageError
	resource := s.manifest.Path
	if errors.As(err, &pkgErr) {
		resource = pkgErr.Package
	}

	ctx := issue.NewErrorContext().WithOperation("build package").WithResource(resource)
	switch {
	case errors.Is(err, assemble.ErrEntryScript):
		ctx = ctx.WithSuggestion("Check the boot, offline_scripts and online_scripts paths in the manifest").
			WithIssue(issue.EntryScriptNotFoundId)
	case errors.Is(err, build.ErrPostBuild):
		ctx = ctx.WithSuggestion("Run the post_build snippet by hand in the package build directory").
			WithIssue(issue.PostBuildFailedId)
	case errors.Is(err, context.Canceled):
		return err
	default:
		ctx = ctx.WithSuggestion("Check that build_dir and boot_dir are writable").
			WithIssue(issue.BuildOutputFailedId)
	}
	return ctx.Wrap(err).BuildError()
}

// runBuildWatch builds once, then rebuilds on every debounced archive change
// until interrupted. The manifest is reloaded for every rebuild; build
// failures are reported and watching continues.
func runBuildWatch(cmd *cobra.Command, app *App, flags buildFlagValues, args []string) error {
	ctx := cmd.Context()
	s, err := app.openSession(ctx, false)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		m, err := app.loadManifest(s.archive.Root())
		if err != nil {
			return err
		}
		s.manifest = m
		_, err = buildOnce(ctx, app, s, flags, args)
		return err
	}

	if err := rebuild(ctx); err != nil {
		s.logger.Error("build failed", "err", err)
	}

	w, err := watch.New(watch.Config{
		Root:     s.archive.Root(),
		Patterns: s.cfg.Watch.Patterns,
		Ignore:   watch.OutputIgnores(s.archive.Root(), s.cfg.BuildDir, s.cfg.BootDir),
		Debounce: s.cfg.Watch.DebounceDuration(),
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("change detected", "files", changed)
			return rebuild(ctx)
		},
	})
	if err != nil {
		return err
	}

	s.logger.Info("watching for changes", "root", s.archive.Root())
	return w.Run(ctx)
}
