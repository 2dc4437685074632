package commands

import (
	"context"
	"flag"
	"fmt"

	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Replacement values come from flags
// or interactive prompts; a blank prompt answer keeps the current value.
type EditCmd struct {
	title string
	desc  string
}

// SetFields sets replacement title and description (for testing).
func (c *EditCmd) SetFields(title, desc string) {
	c.title = title
	c.desc = desc
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task's title and description" }
func (c *EditCmd) Usage() string     { return "taskdeck edit [--title <t>] [--desc <d>] <id>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.title, "t", "", "")
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string) int {
	id, code := parseTaskID(env, args)
	if code != exitcode.Success {
		return code
	}

	sess, _ := env.Sessions.Current()
	st := store.New(env.Svc, sess.Email, nil, nil)

	if err := st.Refresh(ctx); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	var current *service.Task
	for _, t := range st.Tasks() {
		if t.ID == id {
			current = &t
			break
		}
	}
	if current == nil {
		fmt.Fprintf(env.Err, "error: task not found: %d\n", id)
		return exitcode.UserError
	}

	title := c.title
	desc := c.desc
	var err error
	if title == "" {
		title, err = readLine(env, fmt.Sprintf("new title [%s]: ", current.Title))
		if err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
			return exitcode.UserError
		}
		if title == "" {
			title = current.Title
		}
	}
	if desc == "" {
		desc, err = readLine(env, fmt.Sprintf("new description [%s]: ", current.Description))
		if err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
			return exitcode.UserError
		}
		if desc == "" {
			desc = current.Description
		}
	}

	if err := st.Update(ctx, id, title, desc); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}
