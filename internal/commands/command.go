// Package commands provides the command interface and implementations.
package commands

import (
	"bufio"
	"context"
	"flag"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// ServiceFactory creates a backend service. sess is nil for anonymous
// access; persist receives refreshed sessions and may be nil.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *service.Session, persist func(service.Session)) (service.Service, error)

// Env is everything a command runs against. The dispatcher fills it in:
// Svc is only set for commands that need auth, and In carries the
// interactive input stream for prompts.
type Env struct {
	Cfg      *config.Config
	Sessions *session.Holder
	Factory  ServiceFactory
	Svc      service.Service
	In       io.Reader
	Out      io.Writer
	Err      io.Writer

	buf *bufio.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// The dispatcher refuses to route such commands while signed out.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command and returns an exit code.
	Run(ctx context.Context, env *Env, args []string) int
}
