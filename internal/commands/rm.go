package commands

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/store"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. It requires an explicit confirmation
// (or --yes) before mutating anything.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing and scripting).
func (c *RmCmd) SetYes(v bool) {
	c.yes = v
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdeck rm [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, code := parseTaskID(env, args)
	if code != exitcode.Success {
		return code
	}

	if !c.yes {
		ok, err := confirm(env, fmt.Sprintf("delete task %d? [y/N]: ", id))
		if err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
			return exitcode.UserError
		}
		if !ok {
			if !env.Cfg.Quiet {
				fmt.Fprintln(env.Out, "cancelled")
			}
			return exitcode.Success
		}
	}

	sess, _ := env.Sessions.Current()
	st := store.New(env.Svc, sess.Email, nil, nil)

	if err := st.Delete(ctx, id); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}

// parseTaskID extracts the numeric task id argument.
func parseTaskID(env *Env, args []string) (int64, int) {
	if len(args) == 0 {
		fmt.Fprintln(env.Err, "error: task id required")
		return 0, exitcode.UserError
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		fmt.Fprintf(env.Err, "error: invalid task id: %s\n", args[0])
		return 0, exitcode.UserError
	}
	return id, exitcode.Success
}
