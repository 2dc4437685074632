package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command (also the default when taskdeck is
// invoked with no arguments).
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List your tasks, newest first" }
func (c *ListCmd) Usage() string     { return "taskdeck list [common flags]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	sess, _ := env.Sessions.Current()
	st := store.New(env.Svc, sess.Email, nil, nil)

	if err := st.Refresh(ctx); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	tasks := st.Tasks()
	if len(tasks) == 0 {
		if !env.Cfg.Quiet {
			fmt.Fprintln(env.Out, "no tasks found")
		}
		return exitcode.Success
	}

	now := time.Now()
	for _, t := range tasks {
		output.FormatTask(env.Out, t, now)
	}
	return exitcode.Success
}
