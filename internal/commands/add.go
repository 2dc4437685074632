package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/notify"
	"taskdeck/internal/store"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.desc = d
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskdeck add --desc <description> <title...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	desc := strings.TrimSpace(c.desc)

	sess, _ := env.Sessions.Current()
	dispatcher := notify.NewDispatcher(env.Svc, nil)
	st := store.New(env.Svc, sess.Email, dispatcher, nil)

	err := st.Create(ctx, title, desc)
	// The notification is fire-and-forget, but the process must not exit
	// before it settles.
	dispatcher.Wait()

	switch {
	case errors.Is(err, store.ErrValidation):
		fmt.Fprintln(env.Err, "error: title and description are required")
		return exitcode.UserError
	case errors.Is(err, store.ErrNoSession):
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.AuthError
	case err != nil:
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}
