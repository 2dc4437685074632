package supabase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/backend/supabase"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

type wireFrame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// realtimeServer accepts one websocket client and exposes the join frame
// plus a way to push frames down to it.
type realtimeServer struct {
	t     *testing.T
	joins chan wireFrame
	conns chan *websocket.Conn
}

func newRealtimeServer(t *testing.T) (*realtimeServer, *supabase.Client) {
	t.Helper()
	rs := &realtimeServer{
		t:     t,
		joins: make(chan wireFrame, 1),
		conns: make(chan *websocket.Conn, 1),
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/realtime/v1/websocket", r.URL.Path)
		assert.Equal(t, "anon-key", r.URL.Query().Get("apikey"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		rs.conns <- conn

		var join wireFrame
		require.NoError(t, conn.ReadJSON(&join))
		rs.joins <- join
	}))
	t.Cleanup(srv.Close)

	sess := testutil.NewSession("a@x.com")
	cfg := &config.Config{Dir: t.TempDir(), ProjectURL: srv.URL, AnonKey: "anon-key"}
	c, err := supabase.New(context.Background(), cfg, supabase.Options{Session: &sess})
	require.NoError(t, err)
	return rs, c
}

func (rs *realtimeServer) push(frame string) {
	rs.t.Helper()
	select {
	case conn := <-rs.conns:
		require.NoError(rs.t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		rs.conns <- conn
	case <-time.After(time.Second):
		rs.t.Fatal("no websocket client connected")
	}
}

func insertFrame(topic string, task service.Task) string {
	record, _ := json.Marshal(task)
	return fmt.Sprintf(`{
		"topic": %q,
		"event": "postgres_changes",
		"payload": {"data": {"type": "INSERT", "record": %s}},
		"ref": ""
	}`, topic, record)
}

func TestSubscribeSendsJoinFrame(t *testing.T) {
	rs, c := newRealtimeServer(t)

	sub, err := c.SubscribeTaskInserts(context.Background(), "a@x.com", func(service.Task) {})
	require.NoError(t, err)
	defer sub.Close()

	var join wireFrame
	select {
	case join = <-rs.joins:
	case <-time.After(time.Second):
		t.Fatal("no join frame received")
	}

	assert.Equal(t, "realtime:public:tasks", join.Topic)
	assert.Equal(t, "phx_join", join.Event)
	assert.NotEmpty(t, join.Ref)

	var cfg struct {
		Config struct {
			PostgresChanges []map[string]string `json:"postgres_changes"`
		} `json:"config"`
	}
	require.NoError(t, json.Unmarshal(join.Payload, &cfg))
	require.Len(t, cfg.Config.PostgresChanges, 1)
	assert.Equal(t, map[string]string{
		"event":  "INSERT",
		"schema": "public",
		"table":  "tasks",
		"filter": "email=eq.a@x.com",
	}, cfg.Config.PostgresChanges[0])
}

func TestInsertEventsAreDelivered(t *testing.T) {
	rs, c := newRealtimeServer(t)

	got := make(chan service.Task, 2)
	sub, err := c.SubscribeTaskInserts(context.Background(), "a@x.com", func(task service.Task) {
		got <- task
	})
	require.NoError(t, err)
	defer sub.Close()
	<-rs.joins

	mine := service.Task{ID: 5, Title: "pushed", Description: "d", OwnerEmail: "a@x.com",
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	theirs := service.Task{ID: 6, Title: "foreign", OwnerEmail: "b@x.com"}

	// Frames for other topics, other owners and non-insert payloads are all
	// dropped before fn.
	rs.push(`{"topic": "phoenix", "event": "phx_reply", "payload": {}, "ref": "1"}`)
	rs.push(insertFrame("realtime:public:tasks", theirs))
	rs.push(insertFrame("realtime:public:tasks", mine))

	select {
	case task := <-got:
		assert.Equal(t, mine, task)
	case <-time.After(time.Second):
		t.Fatal("insert event not delivered")
	}
	select {
	case task := <-got:
		t.Fatalf("unexpected delivery: %+v", task)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionClose(t *testing.T) {
	rs, c := newRealtimeServer(t)

	sub, err := c.SubscribeTaskInserts(context.Background(), "a@x.com", func(service.Task) {})
	require.NoError(t, err)
	<-rs.joins

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close(), "close is idempotent")

	conn := <-rs.conns
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server side sees the connection go away")
}

func TestSubscribeDialFailure(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir(), ProjectURL: "http://127.0.0.1:1", AnonKey: "anon-key"}
	c, err := supabase.New(context.Background(), cfg, supabase.Options{})
	require.NoError(t, err)

	_, err = c.SubscribeTaskInserts(context.Background(), "a@x.com", func(service.Task) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open change feed")
}
