// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	ScriptNotFoundId Id = iota + 1
	ScriptDirNotFoundId
	ScriptCollisionId
	RegistrationFailedId
	StoreUnreachableId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

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

// Markdown returns the message with a "See also" section for any links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) == 0 && len(i.extLinks) == 0 {
		return sb.String()
	}
	sb.WriteString("\n\n## See also\n")
	for _, link := range slices.Concat(i.docLinks, i.extLinks) {
		sb.WriteString("- <" + string(link) + ">\n")
	}
	return sb.String()
}

// Render renders the issue with glamour using the given style ("dark",
// "light", "notty", "auto" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

No script with that name was discovered in the script directory.

## Things you can try:
- List the scripts libris knows about:
~~~
$ libris list
~~~

- Script names are file names without the extension, so
  ` + "`rate_limit.lua`" + ` is executed as ` + "`rate_limit`" + `
- Files in the ` + "`lib/`" + ` subdirectory are library code, not scripts
- Point libris at another directory with ` + "`--scripts <dir>`",
		extLinks: []HttpLink{"https://redis.io/docs/latest/develop/interact/programmability/eval-intro/"},
	}

	scriptDirNotFoundIssue = &Issue{
		id: ScriptDirNotFoundId,
		mdMsg: `
# Script directory not found!

The configured script directory does not exist or is not readable.

## Things you can try:
- Pass the directory explicitly:
~~~
$ libris --scripts ./scripts list
~~~

- Set it in your config file:
~~~cue
scripts: dir: "/path/to/scripts"
~~~

- Or through the environment:
~~~
$ export LIBRIS_SCRIPTS_DIR=/path/to/scripts
~~~`,
	}

	scriptCollisionIssue = &Issue{
		id: ScriptCollisionId,
		mdMsg: `
# Two scripts share a name!

Two files map to the same script name once the extension is removed and
case is ignored, e.g. ` + "`Report.lua`" + ` and ` + "`report.lua`" + `.

## Things you can try:
- Rename or remove one of the files named above
- Keep script names lowercase with underscores`,
	}

	registrationFailedIssue = &Issue{
		id: RegistrationFailedId,
		mdMsg: `
# Redis rejected a script!

` + "`SCRIPT LOAD`" + ` failed for at least one script, so no scripts were registered.

## Common causes:
- A Lua syntax error in the script or in a ` + "`lib/`" + ` file it is composed with
- The connected user lacks permission for the SCRIPT command

## Things you can try:
- Print the exact body that was sent:
~~~
$ libris show <name>
~~~

- Re-run with ` + "`--verbose`" + ` for the full error chain`,
		extLinks: []HttpLink{"https://redis.io/docs/latest/commands/script-load/"},
	}

	storeUnreachableIssue = &Issue{
		id: StoreUnreachableId,
		mdMsg: `
# Cannot reach Redis!

libris could not connect to the configured Redis server.

## Things you can try:
- Check that Redis is running:
~~~
$ redis-cli -h localhost -p 6379 ping
~~~

- Point libris at the right server:
~~~
$ libris --redis host:6379 load
~~~

- Check ` + "`redis.username`" + ` and ` + "`redis.password`" + ` in your config`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where libris looks for the file:
~~~
$ libris config path
~~~

- Print the schema the file is validated against:
~~~
$ libris config dump --schema
~~~

- Start over from the defaults:
~~~
$ libris config init
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

libris could not read a script or library file.

## Things you can try:
- Check the permissions of the script directory and its ` + "`lib/`" + ` subdirectory
- Run libris as a user that owns the scripts`,
	}

	issues = map[Id]*Issue{
		scriptNotFoundIssue.Id():     scriptNotFoundIssue,
		scriptDirNotFoundIssue.Id():  scriptDirNotFoundIssue,
		scriptCollisionIssue.Id():    scriptCollisionIssue,
		registrationFailedIssue.Id(): registrationFailedIssue,
		storeUnreachableIssue.Id():   storeUnreachableIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, len(ids))
	for i, id := range ids {
		out[i] = issues[id]
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
