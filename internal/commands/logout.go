package commands

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Sign out and discard the stored session" }
func (c *LogoutCmd) Usage() string     { return "taskdeck logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string) int {
	sess, ok := env.Sessions.Current()
	if !ok {
		if !env.Cfg.Quiet {
			fmt.Fprintln(env.Out, "not logged in")
		}
		return exitcode.Success
	}

	// Remote revocation is best effort; the local session is discarded
	// either way.
	if svc, err := env.Factory(ctx, env.Cfg, &sess, nil); err == nil {
		if err := svc.SignOut(ctx); err != nil {
			slog.Warn("signout_revoke_failed", "error", err)
		}
	}

	if err := env.Sessions.Clear(); err != nil {
		fmt.Fprintf(env.Err, "error: failed to remove session: %v\n", err)
		return exitcode.AuthError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}
