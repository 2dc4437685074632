package commands

import (
	"context"
	"flag"
	"fmt"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	password string
}

// SetPassword sets the password (for testing and scripting).
func (c *LoginCmd) SetPassword(p string) {
	c.password = p
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string     { return "taskdeck login [--password <pw>] [email]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	email, password, code := readCredentials(env, args, c.password)
	if code != exitcode.Success {
		return code
	}

	if err := env.Cfg.RequireBackend(); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.UserError
	}

	svc, err := env.Factory(ctx, env.Cfg, nil, nil)
	if err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.BackendError
	}

	sess, err := svc.SignIn(ctx, email, password)
	if err != nil {
		// The backend's message is surfaced verbatim.
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := env.Cfg.EnsureDir(); err != nil {
		fmt.Fprintf(env.Err, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := env.Sessions.Set(sess); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintf(env.Out, "logged in as %s\n", sess.Email)
	}
	return exitcode.Success
}

// readCredentials resolves email and password from args, flags and
// interactive prompts. Both are required; a missing one fails before any
// network traffic.
func readCredentials(env *Env, args []string, password string) (string, string, int) {
	var email string
	switch len(args) {
	case 0:
	case 1:
		email = args[0]
	default:
		fmt.Fprintln(env.Err, "error: expected a single email argument")
		return "", "", exitcode.UserError
	}

	var err error
	if email == "" {
		email, err = readLine(env, "email: ")
		if err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
			return "", "", exitcode.UserError
		}
	}
	if password == "" {
		password, err = readLine(env, "password: ")
		if err != nil {
			fmt.Fprintf(env.Err, "error: %v\n", err)
			return "", "", exitcode.UserError
		}
	}

	if email == "" || password == "" {
		fmt.Fprintln(env.Err, "error: email and password are required")
		return "", "", exitcode.UserError
	}
	return email, password, exitcode.Success
}
