// Package main is the entry point for the taskdeck CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskdeck/internal/backend/supabase"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Structured logs go to stderr so command output stays clean.
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config, sess *service.Session, persist func(service.Session)) (service.Service, error) {
		return supabase.New(ctx, cfg, supabase.Options{
			Session: sess,
			Persist: persist,
			Logger:  logger,
		})
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory, level)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(code)
}
