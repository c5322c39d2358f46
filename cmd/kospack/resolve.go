// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kospack/kospack/internal/assemble"
	"github.com/kospack/kospack/internal/issue"
	"github.com/kospack/kospack/internal/manifest"
	"github.com/kospack/kospack/internal/resolve"
	"github.com/kospack/kospack/pkg/kscript"
)

type resolveFlagValues struct {
	libName     string
	showScript  bool
	showLibrary bool
}

func newResolveCommand(app *App) *cobra.Command {
	var flags resolveFlagValues

	resolveCmd := &cobra.Command{
		Use:   "resolve <script>",
		Short: "Show the dependencies of one script",
		Long: `Show the dependencies of one script.

Prints the libraries the script links with runOncePath, the scripts it runs
with runPath, and the library functions it needs, including functions only
reached through other library functions. Nothing is written to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, flags, args[0])
		},
	}

	resolveCmd.Flags().StringVar(&flags.libName, "lib-name", "", "library name used when rewriting runOncePath (default <script>_lib)")
	resolveCmd.Flags().BoolVar(&flags.showScript, "show-script", false, "print the rewritten script")
	resolveCmd.Flags().BoolVar(&flags.showLibrary, "show-library", false, "print the library the script needs")

	return resolveCmd
}

func runResolve(cmd *cobra.Command, app *App, flags resolveFlagValues, path string) error {
	s, err := app.openSession(cmd.Context(), false)
	if err != nil {
		return err
	}

	unit, err := s.archive.Load(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load script").
			WithResource(path).
			WithSuggestion("Script paths are archive paths such as 0:/src/main.ks").
			WithIssue(issue.EntryScriptNotFoundId).
			Wrap(err).
			BuildError()
	}

	libName := flags.libName
	if libName == "" {
		libName = kscript.ScriptName(unit.Path) + manifest.LibSuffix
	}

	rewrite := kscript.RewriteDirectives(unit.Text, kscript.DefaultLayout(), libName)
	result := resolve.NewCollector(s.archive).Collect(rewrite.Text, rewrite.LinkPaths)

	app.println(TitleStyle.Render(unit.Path))
	app.printf("%s %s\n", keyStyle.Render("links:    "), listOrNone(rewrite.LinkPaths))
	app.printf("%s %s\n", keyStyle.Render("runs:     "), listOrNone(rewrite.RunPaths))
	app.printf("%s %s\n", keyStyle.Render("functions:"), listOrNone(result.Functions.Names()))
	app.printf("%s %s\n", keyStyle.Render("library:  "),
		VerboseStyle.Render(fmt.Sprintf("%d of %d definitions from %d file(s)", result.Functions.Len(), result.Libraries.Len(), len(result.Loaded))))

	for _, d := range result.Diagnostics {
		app.println(formatDiagnostic(d))
	}

	if flags.showScript {
		app.println()
		app.println(SubtitleStyle.Render("--- rewritten script ---"))
		app.printf("%s", ensureNewline(rewrite.Text))
	}
	if flags.showLibrary {
		app.println()
		app.println(SubtitleStyle.Render("--- " + libName + ".ks ---"))
		app.printf("%s", assemble.LibraryText(libName, result.Functions))
	}
	return nil
}

func formatDiagnostic(d resolve.Diagnostic) string {
	label := string(d.Severity)
	switch d.Severity {
	case resolve.SeverityError:
		label = ErrorStyle.Render(label)
	case resolve.SeverityWarning:
		label = WarningStyle.Render(label)
	default:
		label = VerboseStyle.Render(label)
	}
	return label + " " + d.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return strings.Join(items, ", ")
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
