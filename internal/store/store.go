// Package store owns the in-memory task list for one owner and keeps it
// in sync with the remote table. Consistency is by refetch: every
// mutation is followed by a full owner-scoped re-read rather than a local
// patch, which absorbs server-assigned defaults (id, created_at) without
// duplicating them client-side.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"taskdeck/internal/service"
)

var (
	// ErrValidation indicates missing required input. No backend call
	// is made when it is returned.
	ErrValidation = errors.New("title and description are required")

	// ErrNoSession indicates no resolvable owner identity.
	ErrNoSession = errors.New("no active session (run: taskdeck login)")
)

// Notifier receives best-effort task-creation notifications.
type Notifier interface {
	TaskCreated(email, title, description string)
}

// Store synchronizes the local task list against the remote table.
type Store struct {
	svc      service.Service
	email    string
	notifier Notifier
	log      *slog.Logger

	mu    sync.Mutex
	tasks []service.Task

	// Fetch responses are applied in ticket order: a response holding a
	// ticket older than the newest applied one is discarded, so a slow
	// fetch can never overwrite a fresher list.
	fetchSeq   uint64
	appliedSeq uint64
}

// New creates a store for the tasks owned by email. notifier and log may
// be nil.
func New(svc service.Service, email string, notifier Notifier, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		svc:      svc,
		email:    email,
		notifier: notifier,
		log:      log,
	}
}

// Tasks returns a copy of the current list, newest first.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Refresh replaces the whole list with the remote owner-scoped result.
// On error the previous list stays in place and the error is returned for
// the caller to surface.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tasks, err := s.svc.ListTasks(ctx, s.email)
	if err != nil {
		s.log.Warn("task_fetch_failed", "email", s.email, "error", err)
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		s.log.Debug("task_fetch_stale", "seq", seq, "applied", s.appliedSeq)
		return nil
	}
	s.appliedSeq = seq
	s.tasks = tasks
	sortTasks(s.tasks)
	return nil
}

// Create inserts a new task owned by the store's email, fires the
// creation notification and resynchronizes. There is no optimistic local
// insert: the authoritative row (with backend-assigned id and timestamp)
// arrives with the refetch.
func (s *Store) Create(ctx context.Context, title, description string) error {
	if title == "" || description == "" {
		return ErrValidation
	}
	if s.email == "" {
		return ErrNoSession
	}

	t := service.Task{
		Title:       title,
		Description: description,
		OwnerEmail:  s.email,
	}
	if err := s.svc.CreateTask(ctx, t); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if s.notifier != nil {
		s.notifier.TaskCreated(s.email, title, description)
	}
	return s.Refresh(ctx)
}

// Update replaces title and description of the task with the given id,
// then refetches unconditionally: even a failed update resynchronizes so
// the local list never drifts from whatever state the backend is in.
func (s *Store) Update(ctx context.Context, id int64, title, description string) error {
	err := s.svc.UpdateTask(ctx, id, s.email, title, description)
	refreshErr := s.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return refreshErr
}

// Delete removes the task with the given id, then refetches
// unconditionally. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	err := s.svc.DeleteTask(ctx, id, s.email)
	refreshErr := s.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return refreshErr
}

// ApplyInsert merges a pushed row into the list, de-duplicating by id
// against rows already present from a concurrent refetch. Rows owned by
// someone else are ignored. Reports whether the row was merged.
func (s *Store) ApplyInsert(t service.Task) bool {
	if t.OwnerEmail != s.email {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tasks {
		if existing.ID == t.ID {
			return false
		}
	}
	s.tasks = append(s.tasks, t)
	sortTasks(s.tasks)
	return true
}

// Watch opens the change feed and merges pushed inserts into the list.
// Rows that were actually merged (not duplicates) are also handed to
// onInsert when non-nil. The caller must close the returned subscription.
func (s *Store) Watch(ctx context.Context, onInsert func(service.Task)) (service.Subscription, error) {
	return s.svc.SubscribeTaskInserts(ctx, s.email, func(t service.Task) {
		if s.ApplyInsert(t) && onInsert != nil {
			onInsert(t)
		}
	})
}

// sortTasks orders newest first; ties on the timestamp break by
// descending id so the order is deterministic.
func sortTasks(tasks []service.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}
