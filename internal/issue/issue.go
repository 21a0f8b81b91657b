// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	TreeFileNotFoundId Id = iota + 1
	TreeFileInvalidId
	TreeBuildFailedId
	ConfigLoadFailedId
	EngineOptionsInvalidId
	CommandNotFoundId
	CommandFailedId
)

type (
	Id int

	MarkdownMsg string

	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
	}
)

var (
	render = glamour.Render

	treeFileNotFoundIssue = &Issue{
		id:    TreeFileNotFoundId,
		title: "Tree file not found",
		mdMsg: `
# No tree file found!

cmdengine needs a CUE file declaring the command tree.

## Things you can try:
- Pass the file explicitly:
~~~
$ cmdengine run --tree ./tree.cue ping
~~~
- Set ` + "`tree`" + ` in your config file
- Print the bundled demo tree and start from it:
~~~
$ cmdengine tree --demo --source > tree.cue
~~~`,
	}

	treeFileInvalidIssue = &Issue{
		id:    TreeFileInvalidId,
		title: "Tree file is invalid",
		mdMsg: `
# The tree file could not be loaded!

Each problem above is reported with its path inside the file, for example
` + "`modules[0].commands[1].handler`" + `.

## Common causes:
- A handler, check, hook or key function name that is not bound
- A default value that does not parse as the parameter's type
- A cooldown period that is not a Go duration such as ` + "`10s`" + ` or ` + "`1h30m`",
	}

	treeBuildFailedIssue = &Issue{
		id:    TreeBuildFailedId,
		title: "Command tree is inconsistent",
		mdMsg: `
# The command tree failed validation!

## Rules a tree must follow:
- Aliases are non-empty and contain neither whitespace nor the separator
- Required parameters come before optional ones
- Only the last parameter may be a remainder or take multiple values
- Two commands in one module cannot share an alias and a signature`,
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "Configuration could not be loaded",
		mdMsg: `
# Configuration error!

## Things you can try:
- Print the effective configuration:
~~~
$ cmdengine config show
~~~
- Check ` + "`CMDENGINE_*`" + ` environment variables for stray values
- Compare your file against the keys listed by ` + "`cmdengine config show`",
	}

	engineOptionsInvalidIssue = &Issue{
		id:    EngineOptionsInvalidId,
		title: "Engine options are invalid",
		mdMsg: `
# Invalid engine options!

## Common causes:
- A separator that contains a quotation mark
- An absence noun that is blank
- A negative cooldown idle TTL`,
	}

	commandNotFoundIssue = &Issue{
		id:    CommandNotFoundId,
		title: "No command matched",
		mdMsg: `
# No command matched the input!

## Things you can try:
- List every command and its aliases:
~~~
$ cmdengine tree
~~~
- Alias matching is case-insensitive unless ` + "`comparison`" + ` is ` + "`case-sensitive`",
	}

	commandFailedIssue = &Issue{
		id:    CommandFailedId,
		title: "Command failed",
		mdMsg: `
# The command did not run!

The reason above comes from the stage that rejected the input: a check, the
argument parser, a type parser, a parameter check or a cooldown.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see every candidate the engine tried
- Use ` + "`--wait-cooldown`" + ` to retry commands that are cooling down`,
	}

	issues = map[Id]*Issue{
		treeFileNotFoundIssue.Id():     treeFileNotFoundIssue,
		treeFileInvalidIssue.Id():      treeFileInvalidIssue,
		treeBuildFailedIssue.Id():      treeBuildFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		engineOptionsInvalidIssue.Id(): engineOptionsInvalidIssue,
		commandNotFoundIssue.Id():      commandNotFoundIssue,
		commandFailedIssue.Id():        commandFailedIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Title() string {
	return i.title
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the guide, followed by extra lines as a bullet list.
func (i *Issue) Render(stylePath string, extra ...string) (string, error) {
	md := strings.TrimSpace(string(i.mdMsg))
	if len(extra) > 0 {
		md += "\n\n## Details:\n"
		for _, line := range extra {
			md += "- " + line + "\n"
		}
	}
	return render(md, stylePath)
}

// Values returns every known issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
