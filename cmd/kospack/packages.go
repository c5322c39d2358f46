// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPackagesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "packages",
		Aliases: []string{"list"},
		Short:   "List manifest packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd.Context(), true)
			if err != nil {
				return err
			}

			app.printf("%s %s\n", TitleStyle.Render("Packages"), SubtitleStyle.Render("("+s.relPath(s.manifest.Path)+")"))
			if len(s.manifest.Packages) == 0 {
				app.println(SubtitleStyle.Render("  (none declared)"))
				return nil
			}

			for _, pkg := range s.manifest.Sorted() {
				app.printf("  %s %s\n", keyStyle.Render(pkg.Name), SubtitleStyle.Render("v"+pkg.Version))
				app.printf("    boot:    %s\n", PathStyle.Render(pkg.Boot))
				app.printf("    scripts: %s\n", VerboseStyle.Render(fmt.Sprintf("%d offline, %d online", len(pkg.OfflineScripts), len(pkg.OnlineScripts))))
				if app.flags.verbose {
					app.printf("    compile: %v, persistent_data: %v, boot file: %s\n", pkg.Compile, pkg.PersistentData, pkg.BootFileName())
					if pkg.PostBuild != "" {
						app.printf("    post_build: %q\n", pkg.PostBuild)
					}
				}
			}
			return nil
		},
	}
}
