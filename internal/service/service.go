// Package service defines the backend-agnostic interface for auth and task
// operations. Commands and the store never talk to the managed backend
// directly; everything goes through this interface.
package service

import "context"

// Service defines the operations the client needs from the managed backend.
type Service interface {
	// SignUp registers a new account. The account is unusable until the
	// user confirms their email out of band.
	SignUp(ctx context.Context, email, password string) error

	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (Session, error)

	// SignOut revokes the current session on the backend.
	SignOut(ctx context.Context) error

	// ListTasks returns all tasks owned by ownerEmail, ordered by
	// creation time descending (newest first).
	ListTasks(ctx context.Context, ownerEmail string) ([]Task, error)

	// CreateTask inserts a new task row. ID and CreatedAt are assigned
	// by the backend and ignored on input.
	CreateTask(ctx context.Context, t Task) error

	// UpdateTask replaces title and description of the task with the
	// given id, scoped to ownerEmail. Updating a missing id is a no-op.
	UpdateTask(ctx context.Context, id int64, ownerEmail, title, description string) error

	// DeleteTask removes the task with the given id, scoped to
	// ownerEmail. Deleting a missing id is a no-op.
	DeleteTask(ctx context.Context, id int64, ownerEmail string) error

	// SubscribeTaskInserts opens the change feed for task inserts owned
	// by ownerEmail and delivers each new row to fn. The returned
	// subscription must be closed when the caller is done.
	SubscribeTaskInserts(ctx context.Context, ownerEmail string, fn func(Task)) (Subscription, error)

	// Invoke calls a remote function by name with a JSON payload. If
	// result is non-nil the response body is decoded into it.
	Invoke(ctx context.Context, name string, payload, result any) error
}

// Subscription is a handle to an open change-feed channel.
type Subscription interface {
	Close() error
}
