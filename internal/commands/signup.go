package commands

import (
	"context"
	"flag"
	"fmt"

	"taskdeck/internal/exitcode"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	password string
}

// SetPassword sets the password (for testing and scripting).
func (c *SignupCmd) SetPassword(p string) {
	c.password = p
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create a new account" }
func (c *SignupCmd) Usage() string     { return "taskdeck signup [--password <pw>] [email]" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, env *Env, args []string) int {
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

	if err := svc.SignUp(ctx, email, password); err != nil {
		fmt.Fprintf(env.Err, "error: %v\n", err)
		return exitcode.AuthError
	}

	// Sign-up is not a sign-in: the account needs out-of-band email
	// confirmation before credentials work.
	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "check your email to confirm your account")
	}
	return exitcode.Success
}
