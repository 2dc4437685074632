package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/testutil"
)

func newHolder(t *testing.T) (*session.Holder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return session.NewHolder(path, nil), path
}

func TestLoadMissingFile(t *testing.T) {
	h, _ := newHolder(t)
	require.NoError(t, h.Load())

	_, ok := h.Current()
	assert.False(t, ok)
}

func TestSetPersistsAndReloads(t *testing.T) {
	h, path := newHolder(t)
	require.NoError(t, h.Set(testutil.NewSession("a@x.com")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", s.Email)

	// A fresh holder on the same path sees the persisted session.
	h2 := session.NewHolder(path, nil)
	require.NoError(t, h2.Load())
	id, ok := h2.Identity()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", id.Email)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestClearRemovesFile(t *testing.T) {
	h, path := newHolder(t)
	require.NoError(t, h.Set(testutil.NewSession("a@x.com")))
	require.NoError(t, h.Clear())

	_, ok := h.Current()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadDiscardsGarbage(t *testing.T) {
	h, path := newHolder(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	require.NoError(t, h.Load())
	_, ok := h.Current()
	assert.False(t, ok)
}

func TestLoadDiscardsDeadSession(t *testing.T) {
	h, path := newHolder(t)

	dead := service.Session{
		Email: "a@x.com",
		Token: oauth2.Token{
			AccessToken: testutil.TestJWT("a@x.com", time.Now().Add(-time.Hour)),
			Expiry:      time.Now().Add(-time.Hour),
			// No refresh token, so nothing can revive it.
		},
	}
	require.NoError(t, session.NewHolder(path, nil).Set(dead))

	require.NoError(t, h.Load())
	_, ok := h.Current()
	assert.False(t, ok, "expired session without refresh token is discarded")
}

func TestSubscribe(t *testing.T) {
	h, _ := newHolder(t)

	var got []*service.Session
	unsub := h.Subscribe(func(s *service.Session) {
		got = append(got, s)
	})

	require.NoError(t, h.Set(testutil.NewSession("a@x.com")))
	require.Len(t, got, 1)
	require.NotNil(t, got[0])
	assert.Equal(t, "a@x.com", got[0].Email)

	require.NoError(t, h.Clear())
	require.Len(t, got, 2)
	assert.Nil(t, got[1], "clear publishes a nil session")

	unsub()
	require.NoError(t, h.Set(testutil.NewSession("b@x.com")))
	assert.Len(t, got, 2, "no deliveries after unsubscribe")
}
