// Package cli parses arguments and routes to commands. Routing is
// session-aware: commands that need auth are only dispatched when a
// session is present; otherwise the user is pointed at login.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  commands.ServiceFactory
	level    *slog.LevelVar
}

// NewDispatcher creates a dispatcher. level, when non-nil, is raised to
// debug when --debug is given.
func NewDispatcher(registry *commands.Registry, factory commands.ServiceFactory, level *slog.LevelVar) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		level:    level,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	// No args -> dispatch to "list" with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, in, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], in, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if debug && d.level != nil {
		d.level.Set(slog.LevelDebug)
	}

	holder := session.NewHolder(cfg.SessionPath(), slog.Default())
	if err := holder.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	env := &commands.Env{
		Cfg:      cfg,
		Sessions: holder,
		Factory:  d.factory,
		In:       in,
		Out:      out,
		Err:      errOut,
	}

	if cmd.NeedsAuth() {
		sess, ok := holder.Current()
		if !ok {
			fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
			return exitcode.AuthError
		}
		if err := cfg.RequireBackend(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}

		persist := func(s service.Session) {
			if err := holder.Set(s); err != nil {
				slog.Warn("session_persist_failed", "error", err)
			}
		}
		svc, err := d.factory(ctx, cfg, &sess, persist)
		if err != nil {
			if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "session") {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		env.Svc = svc
	}

	return cmd.Run(ctx, env, positionalArgs)
}

// flagError maps flag-parse failures to user-facing messages.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		if len(parts) > 0 {
			flagPart := strings.TrimSpace(parts[0])
			flagPart = strings.TrimPrefix(flagPart, "flag ")
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
			return exitcode.UserError
		}
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
