package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the signed-in identity" }
func (c *WhoamiCmd) Usage() string     { return "taskdeck whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, ok := env.Sessions.Identity()
	if !ok {
		fmt.Fprintln(env.Err, "error: not logged in (run: taskdeck login)")
		return exitcode.AuthError
	}

	fmt.Fprintln(env.Out, id.Email)
	if !env.Cfg.Quiet && !id.ExpiresAt.IsZero() {
		fmt.Fprintf(env.Out, "token expires %s\n", id.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return exitcode.Success
}
