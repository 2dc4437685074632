package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskdeck/internal/service"
)

const (
	realtimePath = "/realtime/v1/websocket"

	// heartbeatInterval keeps the channel alive; the server drops
	// connections that go quiet for more than a minute.
	heartbeatInterval = 30 * time.Second

	tasksTopic = "realtime:public:" + TasksTable
)

// realtimeMessage is the Phoenix-channel wire frame.
type realtimeMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// insertPayload is the postgres_changes event payload for an INSERT.
type insertPayload struct {
	Data struct {
		Type   string       `json:"type"`
		Record service.Task `json:"record"`
	} `json:"data"`
}

// subscription is one open change-feed channel. Exactly one is opened per
// watch session and Close tears down the socket, the heartbeat and the
// read loop.
type subscription struct {
	conn   *websocket.Conn
	cancel context.CancelFunc

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

var _ service.Subscription = (*subscription)(nil)

// SubscribeTaskInserts implements service.Service. Insert events for rows
// owned by ownerEmail are delivered to fn from a single reader goroutine.
func (c *Client) SubscribeTaskInserts(ctx context.Context, ownerEmail string, fn func(service.Task)) (service.Subscription, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + realtimePath +
		"?apikey=" + c.anonKey + "&vsn=1.0.0"

	ctx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change feed: %w", err)
	}

	sub := &subscription{
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	join := map[string]any{
		"config": map[string]any{
			"postgres_changes": []map[string]string{{
				"event":  "INSERT",
				"schema": "public",
				"table":  TasksTable,
				"filter": "email=eq." + ownerEmail,
			}},
		},
	}
	if err := sub.send(tasksTopic, "phx_join", join); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to join change feed: %w", err)
	}

	go sub.heartbeat(ctx, c.log)
	go sub.readLoop(ctx, c.log, ownerEmail, fn)

	return sub, nil
}

// send serializes one frame; gorilla permits a single concurrent writer.
func (s *subscription) send(topic, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := realtimeMessage{
		Topic:   topic,
		Event:   event,
		Payload: data,
		Ref:     uuid.NewString(),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *subscription) heartbeat(ctx context.Context, log *slog.Logger) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.send("phoenix", "heartbeat", map[string]any{}); err != nil {
				log.Warn("change_feed_heartbeat_failed", "error", err)
				return
			}
		}
	}
}

func (s *subscription) readLoop(ctx context.Context, log *slog.Logger, ownerEmail string, fn func(service.Task)) {
	defer close(s.done)

	for {
		var msg realtimeMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				log.Warn("change_feed_closed", "error", err)
			}
			return
		}

		if msg.Topic != tasksTopic || msg.Event != "postgres_changes" {
			continue
		}

		var p insertPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Warn("change_feed_bad_payload", "error", err)
			continue
		}
		if p.Data.Type != "INSERT" {
			continue
		}
		// The join filter already scopes by owner; guard anyway so a
		// misconfigured channel never leaks foreign rows.
		if p.Data.Record.OwnerEmail != ownerEmail {
			continue
		}
		fn(p.Data.Record)
	}
}

// Close implements service.Subscription.
func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()

		select {
		case <-s.done:
		case <-time.After(time.Second):
		}
	})
	return err
}
