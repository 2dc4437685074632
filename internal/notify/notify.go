// Package notify sends the best-effort email notification fired when a
// task is created. Outcomes are logged and never surfaced to the user;
// there are no retries and creation never blocks on the result.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FunctionName is the remote function invoked for each notification.
const FunctionName = "send-email-notification"

// dispatchTimeout bounds a single notification attempt.
const dispatchTimeout = 10 * time.Second

// Invoker calls remote functions. Satisfied by the backend client.
type Invoker interface {
	Invoke(ctx context.Context, name string, payload, result any) error
}

// payload is the fixed shape the remote function expects.
type payload struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
}

// Dispatcher fires task-creation notifications in the background.
type Dispatcher struct {
	invoker Invoker
	log     *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. log may be nil.
func NewDispatcher(invoker Invoker, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{invoker: invoker, log: log}
}

// TaskCreated invokes the notification function asynchronously and
// returns immediately.
func (d *Dispatcher) TaskCreated(email, title, description string) {
	p := payload{
		To:          []string{email},
		Subject:     "New Task Added: " + title,
		Description: description,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.invoker.Invoke(ctx, FunctionName, p, nil); err != nil {
			d.log.Warn("notification_failed", "to", email, "subject", p.Subject, "error", err)
			return
		}
		d.log.Info("notification_sent", "to", email, "subject", p.Subject)
	}()
}

// Wait blocks until all in-flight notifications have settled. Used at
// process shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
