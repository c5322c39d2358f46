// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/kospack/kospack/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the kospack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kospack",
		Short: "Bundle kerboscript packages for kOS vessels",
		Long: TitleStyle.Render("kospack") + SubtitleStyle.Render(" - Bundle kerboscript packages for kOS vessels") + `

kospack reads the package manifest of a kOS archive and builds every package
into a self-contained directory: entry scripts with their runpath targets,
one consolidated library holding exactly the functions they call, wrappers
for scripts that stay on the archive, and an installer boot file.

` + SubtitleStyle.Render("Examples:") + `
  kospack packages                  List manifest packages
  kospack build                     Build every package
  kospack build probe --watch       Rebuild probe on every change
  kospack resolve 0:/src/main.ks    Show what one script pulls in
  kospack graph probe               Show the runpath graph of probe`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&app.flags.archiveDir, "archive", "C", "", "archive root directory (default is the working directory)")
	flags.StringVar(&app.flags.manifestPath, "manifest", "", "manifest file (default is manifest.{cue,yaml,yml,toml} in the archive root)")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/kospack/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newBuildCommand(app),
		newResolveCommand(app),
		newGraphCommand(app),
		newPackagesCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's status.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError renders command errors. Actionable errors get their
// suggestions and, when they reference one, the catalog entry.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(a.flags.verbose))
	if ae.Issue == 0 {
		return
	}
	if entry := issue.Get(ae.Issue); entry != nil {
		rendered, renderErr := entry.Render(a.glamourStyle)
		if renderErr != nil {
			fmt.Fprintln(w, VerboseStyle.Render(fmt.Sprintf("(issue help unavailable: %v)", renderErr)))
			return
		}
		fmt.Fprint(w, rendered)
	}
}
