package commands

import (
	"context"
	"flag"
	"fmt"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdeck help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprint(env.Out, helpText)
	return 0
}

const helpText = `Usage:
  taskdeck                                    List your tasks, newest first
  taskdeck list [common flags]                Same as above
  taskdeck add [common flags] --desc <description> <title...>
  taskdeck edit [common flags] [--title <t>] [--desc <d>] <id>
  taskdeck rm [common flags] [--yes] <id>
  taskdeck watch [common flags]               Stream newly created tasks
  taskdeck signup [common flags] [--password <pw>] [email]
  taskdeck login [common flags] [--password <pw>] [email]
  taskdeck logout [common flags]
  taskdeck whoami [common flags]
  taskdeck help
  taskdeck version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
