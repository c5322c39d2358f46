// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	ArchiveNotFoundId Id = iota + 1
	ManifestNotFoundId
	ManifestParseErrorId
	PackageNotFoundId
	EntryScriptNotFoundId
	ConfigLoadFailedId
	BuildOutputFailedId
	PostBuildFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown for the terminal. An empty stylePath
// selects glamour's automatic style.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	archiveNotFoundIssue = &Issue{
		id: ArchiveNotFoundId,
		mdMsg: `
# Archive directory not found!

kospack works on a host copy of the kOS archive (volume 0). Every "0:/..."
path in your scripts and manifest is resolved relative to that directory.

## Things you can try:
- Run kospack from the archive root (the directory holding your manifest)
- Or point at it explicitly:
~~~
$ kospack -C ~/KSP/Ships/Script build
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest found!

kospack looks for one of these files in the archive root, in order:
1. manifest.cue
2. manifest.yaml
3. manifest.yml
4. manifest.toml

## Example manifest.yaml:
~~~yaml
packages:
  probe:
    version: "1.2.0"
    boot: 0:/src/boot/probe.ks
    offline_scripts:
      - 0:/src/probe/main.ks
    online_scripts:
      - 0:/src/probe/report.ks
~~~

## Things you can try:
- Create a manifest in the archive root
- Or pass one explicitly with --manifest`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the manifest!

Your manifest contains syntax errors or does not match the package schema.

## Common issues:
- A package without a boot script
- Unknown field names (the schema is closed)
- Scripts given as a single string instead of a list
- A boot_name containing a path separator

## Things you can try:
- Check the field path in the error message above
- Quote version strings in YAML and TOML ("1.0" rather than 1.0)`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

The package you asked for is not defined in the manifest.

## Things you can try:
- List the packages kospack can see:
~~~
$ kospack packages
~~~
- Check for typos; package names are case-sensitive`,
	}

	entryScriptNotFoundIssue = &Issue{
		id: EntryScriptNotFoundId,
		mdMsg: `
# Entry script not found!

A script listed in offline_scripts or online_scripts (or the boot script)
does not exist in the archive.

Scripts discovered through runpath are only reported as warnings. Scripts
named in the manifest are required.

## Things you can try:
- Check the path; "0:/src/x.ks" maps to <archive>/src/x.ks
- Inspect a single script's dependencies:
~~~
$ kospack resolve 0:/src/x.ks
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your kospack configuration file could not be loaded.

## Things you can try:
- Show where kospack looks for it:
~~~
$ kospack config path
~~~
- Print the effective configuration:
~~~
$ kospack config show
~~~
- Recreate a default file:
~~~
$ kospack config init --force
~~~`,
	}

	buildOutputFailedIssue = &Issue{
		id: BuildOutputFailedId,
		mdMsg: `
# Failed to write build output!

kospack removes and recreates the package directories under the build
directory on every build.

## Things you can try:
- Make sure no other program holds files in the build directory open
- Check permissions of the build and boot directories
- Use --no-clean to keep existing output in place`,
	}

	postBuildFailedIssue = &Issue{
		id: PostBuildFailedId,
		mdMsg: `
# post_build hook failed!

The package was written, but its post_build snippet exited with an error.
Hooks run in kospack's embedded POSIX shell inside the package build
directory, with KOSPACK_PACKAGE, KOSPACK_VERSION and KOSPACK_PACKAGE_ROOT set.

## Things you can try:
- Run the snippet by hand from the package build directory
- Rebuild with --verbose to see the hook's output`,
	}

	issues = map[Id]*Issue{
		archiveNotFoundIssue.Id():     archiveNotFoundIssue,
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		manifestParseErrorIssue.Id():  manifestParseErrorIssue,
		packageNotFoundIssue.Id():     packageNotFoundIssue,
		entryScriptNotFoundIssue.Id(): entryScriptNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		buildOutputFailedIssue.Id():   buildOutputFailedIssue,
		postBuildFailedIssue.Id():     postBuildFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	values := slices.Collect(maps.Values(issues))
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
