package commands

import (
	"context"
	"flag"
	"fmt"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command: an initial fetch, then the
// change feed merged into the list until interrupted. One subscription is
// opened per invocation and closed on the way out.
type WatchCmd struct{}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Stream newly created tasks" }
func (c *WatchCmd) Usage() string     { return "taskdeck watch [common flags]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, env *Env, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Stop streaming if the session goes away underneath us.
	unsub := env.Sessions.Subscribe(func(s *service.Session) {
		if s == nil {
			cancel()
		}
	})
	defer unsub()

	sess, _ := env.Sessions.Current()
	st := store.New(env.Svc, sess.Email, nil, nil)

	if err := st.Refresh(ctx); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	sub, err := st.Watch(ctx, func(t service.Task) {
		output.FormatInsertEvent(env.Out, t)
	})
	if err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer sub.Close()

	if !env.Cfg.Quiet {
		fmt.Fprintf(env.Out, "watching %d tasks for inserts (ctrl-c to stop)\n", len(st.Tasks()))
	}

	<-ctx.Done()
	return exitcode.Success
}
