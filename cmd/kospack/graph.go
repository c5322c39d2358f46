// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kospack/kospack/internal/assemble"
	"github.com/kospack/kospack/internal/dag"
	"github.com/kospack/kospack/internal/resolve"
)

func newGraphCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <package>",
		Short: "Show the runpath graph of a package",
		Long: `Show the runpath graph of a package.

Scripts are listed so that every script comes before the scripts it runs.
Runpath cycles are legal in kOS; they are reported and the scripts in them
are listed in discovery order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			pkgs, err := s.selectPackages(args[0])
			if err != nil {
				return err
			}
			pkg := pkgs[0]

			bundle, err := assemble.New(s.archive).Assemble(cmd.Context(), assemble.Input{
				LibName: pkg.LibName(),
				Offline: pkg.OfflineScripts,
			})
			if err != nil {
				return buildError(s, err)
			}

			g := scriptGraph(bundle)
			order, sortErr := g.TopologicalSort()

			app.println(TitleStyle.Render(pkg.Name) + " " + SubtitleStyle.Render("v"+pkg.Version))
			var cycle *dag.CycleError
			if errors.As(sortErr, &cycle) {
				app.println(formatDiagnostic(resolve.Diagnostic{
					Severity: resolve.SeverityInfo,
					Code:     resolve.CodeRunpathCycle,
					Message:  strings.Join(cycle.Cycle, " -> "),
				}))
				order = append(order, cycle.Cycle...)
			}

			for _, node := range order {
				line := "  " + PathStyle.Render(node)
				if next := g.Successors(node); len(next) > 0 {
					line += " " + SubtitleStyle.Render("->") + " " + strings.Join(next, ", ")
				}
				app.println(line)
			}
			for _, d := range bundle.Diagnostics {
				app.println(formatDiagnostic(d))
			}
			return nil
		},
	}
}

// scriptGraph builds the runpath graph of bundle: every processed script in
// processing order, then every runpath edge.
func scriptGraph(bundle *assemble.Bundle) *dag.Graph {
	g := dag.New()
	for _, script := range bundle.Scripts {
		g.AddNode(script.Path)
	}
	for _, e := range bundle.Edges {
		g.AddEdge(e.From, strings.TrimSpace(e.To))
	}
	return g
}
