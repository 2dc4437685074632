// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/service"
)

// ErrInvalidCredentials is what the fake auth endpoint returns for a bad
// email/password pair.
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// Invocation records one remote function call.
type Invocation struct {
	Name    string
	Payload any
}

// FakeService is an in-memory implementation of service.Service for
// testing. Zero value is not usable; use NewFakeService.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int64
	clock  time.Time

	// Accounts maps email to password for SignIn/SignUp.
	Accounts map[string]string

	// Error injection for testing
	SignUpErr    error
	SignInErr    error
	SignOutErr   error
	ListErr      error
	CreateErr    error
	UpdateErr    error
	DeleteErr    error
	SubscribeErr error
	InvokeErr    error

	// Call counters
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// Invocations records every remote function call.
	Invocations []Invocation

	subs []*fakeSub
}

// NewFakeService creates an empty fake backend.
func NewFakeService() *FakeService {
	return &FakeService{
		Accounts: make(map[string]string),
		nextID:   1,
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// AddTask seeds a task row. Each seeded task is one minute newer than the
// previous one, so insertion order is oldest-to-newest.
func (f *FakeService) AddTask(email, title, description string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          f.nextID,
		Title:       title,
		Description: description,
		OwnerEmail:  email,
		CreatedAt:   f.clock,
	}
	f.nextID++
	f.clock = f.clock.Add(time.Minute)
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of all rows (all owners).
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// SignUp implements service.Service.
func (f *FakeService) SignUp(ctx context.Context, email, password string) error {
	if f.SignUpErr != nil {
		return f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.Accounts[email]; exists {
		return errors.New("User already registered")
	}
	f.Accounts[email] = password
	return nil
}

// SignIn implements service.Service.
func (f *FakeService) SignIn(ctx context.Context, email, password string) (service.Session, error) {
	if f.SignInErr != nil {
		return service.Session{}, f.SignInErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pw, ok := f.Accounts[email]; !ok || pw != password {
		return service.Session{}, ErrInvalidCredentials
	}
	return NewSession(email), nil
}

// SignOut implements service.Service.
func (f *FakeService) SignOut(ctx context.Context) error {
	return f.SignOutErr
}

// ListTasks implements service.Service. Results are owner-scoped and
// ordered newest first, the way the remote table serves them.
func (f *FakeService) ListTasks(ctx context.Context, ownerEmail string) ([]service.Task, error) {
	f.mu.Lock()
	f.ListCalls++
	f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []service.Task
	for _, t := range f.tasks {
		if t.OwnerEmail == ownerEmail {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, t service.Task) error {
	f.mu.Lock()
	f.CreateCalls++
	f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.AddTask(t.OwnerEmail, t.Title, t.Description)
	return nil
}

// UpdateTask implements service.Service. Updating a missing id is a
// no-op, matching the remote table's filtered update.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, ownerEmail, title, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID == id && t.OwnerEmail == ownerEmail {
			f.tasks[i].Title = title
			f.tasks[i].Description = description
			return nil
		}
	}
	return nil
}

// DeleteTask implements service.Service. Deleting a missing id is a
// no-op.
func (f *FakeService) DeleteTask(ctx context.Context, id int64, ownerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id && t.OwnerEmail == ownerEmail {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// Invoke implements service.Service.
func (f *FakeService) Invoke(ctx context.Context, name string, payload, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InvokeErr != nil {
		return f.InvokeErr
	}
	f.Invocations = append(f.Invocations, Invocation{Name: name, Payload: payload})
	return nil
}

// InvocationCount returns the number of recorded function calls.
func (f *FakeService) InvocationCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.Invocations)
}

// SubscribeTaskInserts implements service.Service.
func (f *FakeService) SubscribeTaskInserts(ctx context.Context, ownerEmail string, fn func(service.Task)) (service.Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{svc: f, owner: ownerEmail, fn: fn}
	f.subs = append(f.subs, sub)
	return sub, nil
}

// PushInsert delivers an insert event to every open subscription whose
// owner matches, simulating the change feed.
func (f *FakeService) PushInsert(t service.Task) {
	f.mu.RLock()
	subs := make([]*fakeSub, 0, len(f.subs))
	for _, s := range f.subs {
		if !s.closed && s.owner == t.OwnerEmail {
			subs = append(subs, s)
		}
	}
	f.mu.RUnlock()

	for _, s := range subs {
		s.fn(t)
	}
}

// OpenSubscriptions returns the number of not-yet-closed subscriptions.
func (f *FakeService) OpenSubscriptions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, s := range f.subs {
		if !s.closed {
			n++
		}
	}
	return n
}

type fakeSub struct {
	svc    *FakeService
	owner  string
	fn     func(service.Task)
	closed bool
}

func (s *fakeSub) Close() error {
	s.svc.mu.Lock()
	defer s.svc.mu.Unlock()
	s.closed = true
	return nil
}

// NewSession builds a session whose access token is a parseable (but
// unsigned) JWT carrying the email claim, expiring an hour out.
func NewSession(email string) service.Session {
	exp := time.Now().Add(time.Hour)
	return service.Session{
		Email: email,
		Token: oauth2.Token{
			AccessToken:  TestJWT(email, exp),
			TokenType:    "Bearer",
			RefreshToken: "fake-refresh-token",
			Expiry:       exp,
		},
	}
}

// TestJWT builds a three-segment JWT with the given email and expiry.
// The signature is garbage; nothing client-side verifies it.
func TestJWT(email string, exp time.Time) string {
	enc := func(v any) string {
		data, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	claims := map[string]any{"email": email, "exp": exp.Unix()}
	return fmt.Sprintf("%s.%s.%s", enc(header), enc(claims),
		base64.RawURLEncoding.EncodeToString([]byte("test-signature")))
}
