// Package session owns the current authenticated identity and its
// lifecycle: loaded once at startup, replaced on every auth event and
// cleared on sign-out. Interested parties subscribe for changes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskdeck/internal/service"
)

// Holder tracks the current session, persists it to disk and republishes
// it to subscribers on every change.
type Holder struct {
	mu        sync.RWMutex
	path      string
	current   *service.Session
	nextSub   int
	listeners map[int]func(*service.Session)
	log       *slog.Logger
}

// NewHolder creates a holder persisting to path. log may be nil.
func NewHolder(path string, log *slog.Logger) *Holder {
	if log == nil {
		log = slog.Default()
	}
	return &Holder{
		path:      path,
		listeners: make(map[int]func(*service.Session)),
		log:       log,
	}
}

// Load reads any persisted session and publishes it. A missing file means
// no session. A session that cannot mint new tokens, or whose access token
// is not a parseable JWT, is discarded as dead.
func (h *Holder) Load() error {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var s service.Session
	if err := json.Unmarshal(data, &s); err != nil {
		h.log.Warn("session_file_invalid", "path", h.path, "error", err)
		return nil
	}
	if !s.Valid() {
		h.log.Warn("session_expired", "email", s.Email)
		return nil
	}
	if _, err := parseClaims(s.Token.AccessToken); err != nil {
		h.log.Warn("session_token_unparseable", "error", err)
		return nil
	}

	h.publish(&s)
	return nil
}

// Current returns the current session, if any.
func (h *Holder) Current() (service.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return service.Session{}, false
	}
	return *h.current, true
}

// Set persists the session (mode 0600) and publishes it. It is called on
// sign-in and again whenever the backend client refreshes the token.
func (h *Holder) Set(s service.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(h.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	h.publish(&s)
	return nil
}

// Clear removes the persisted session and publishes the signed-out state.
func (h *Holder) Clear() error {
	err := os.Remove(h.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	h.publish(nil)
	return nil
}

// Subscribe registers fn to be called on every session change and returns
// a function that unregisters it. Callers must release the subscription
// when done with it.
func (h *Holder) Subscribe(fn func(*service.Session)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *Holder) publish(s *service.Session) {
	h.mu.Lock()
	h.current = s
	fns := make([]func(*service.Session), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Identity describes the current token holder, derived from the access
// token's JWT claims. The client has no signing secret, so claims are
// parsed without verification; the backend is the authority either way.
type Identity struct {
	Email     string
	ExpiresAt time.Time
}

// Identity returns the identity of the current session.
func (h *Holder) Identity() (Identity, bool) {
	s, ok := h.Current()
	if !ok {
		return Identity{}, false
	}
	claims, err := parseClaims(s.Token.AccessToken)
	if err != nil {
		return Identity{Email: s.Email}, true
	}
	id := Identity{Email: claims.Email}
	if id.Email == "" {
		id.Email = s.Email
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, true
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func parseClaims(accessToken string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
