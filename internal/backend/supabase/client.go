// Package supabase implements the service.Service interface against a
// Supabase-style managed backend: auth REST, PostgREST row API, edge
// function invocation and a realtime change feed.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

const (
	// APITimeout is the timeout for a single REST call.
	APITimeout = 10 * time.Second

	// TasksTable is the remote table holding task rows.
	TasksTable = "tasks"

	authPath      = "/auth/v1"
	restPath      = "/rest/v1"
	functionsPath = "/functions/v1"
)

// Client implements service.Service over the backend's HTTP surface.
type Client struct {
	baseURL string
	anonKey string

	// authed injects a bearer token (auto-refreshing); anon carries only
	// the API key and serves the credential-exchange endpoints.
	authed *http.Client
	anon   *http.Client

	log *slog.Logger
}

// Options configures a Client.
type Options struct {
	// Session, when set, enables authenticated calls.
	Session *service.Session

	// Persist is called with the updated session whenever the access
	// token is refreshed. May be nil.
	Persist func(service.Session)

	// Logger for backend events. May be nil.
	Logger *slog.Logger

	// HTTPClient overrides the transport (for tests). May be nil.
	HTTPClient *http.Client
}

// New creates a backend client. With a session present, REST calls carry a
// bearer token minted from an auto-refreshing token source; refreshed
// tokens flow back through opts.Persist.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Client, error) {
	if err := cfg.RequireBackend(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	c := &Client{
		baseURL: cfg.ProjectURL,
		anonKey: cfg.AnonKey,
		anon:    base,
		log:     log,
	}

	if opts.Session != nil {
		src := &refreshTokenSource{
			client:  c,
			session: *opts.Session,
			persist: opts.Persist,
		}
		// oauth2.NewClient layers the bearer-injecting transport over
		// the base client supplied via the context.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		tok := opts.Session.Token
		c.authed = oauth2.NewClient(ctx, oauth2.ReuseTokenSource(&tok, src))
	}

	return c, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, ownerEmail string) ([]service.Task, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("email", "eq."+ownerEmail)
	q.Set("order", "created_at.desc")

	var tasks []service.Task
	if err := c.rest(ctx, http.MethodGet, q, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, t service.Task) error {
	record := map[string]string{
		"title":       t.Title,
		"description": t.Description,
		"email":       t.OwnerEmail,
	}
	return c.rest(ctx, http.MethodPost, nil, record, nil)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, ownerEmail, title, description string) error {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("email", "eq."+ownerEmail)

	fields := map[string]string{
		"title":       title,
		"description": description,
	}
	return c.rest(ctx, http.MethodPatch, q, fields, nil)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64, ownerEmail string) error {
	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatInt(id, 10))
	q.Set("email", "eq."+ownerEmail)

	return c.rest(ctx, http.MethodDelete, q, nil, nil)
}

// Invoke implements service.Service.
func (c *Client) Invoke(ctx context.Context, name string, payload, result any) error {
	u := c.baseURL + functionsPath + "/" + name
	return c.do(ctx, c.httpClient(), http.MethodPost, u, payload, result)
}

// rest issues a request against the tasks table.
func (c *Client) rest(ctx context.Context, method string, q url.Values, body, result any) error {
	u := c.baseURL + restPath + "/" + TasksTable
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return c.do(ctx, c.httpClient(), method, u, body, result)
}

// do issues one JSON request with the per-call timeout and decodes the
// response into result when non-nil.
func (c *Client) do(ctx context.Context, hc *http.Client, method, u string, body, result any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && strings.Contains(u, restPath+"/") {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return wrapError(apiError(resp))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// httpClient returns the authed client when a session is present.
func (c *Client) httpClient() *http.Client {
	if c.authed != nil {
		return c.authed
	}
	return c.anon
}

// apiError extracts the backend's error message from a non-2xx response.
// PostgREST reports {"message": ...}; the auth endpoint reports either
// {"error_description": ...} or {"msg": ...}.
func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Message, body.ErrorDescription, body.Msg} {
			if m != "" {
				return &statusError{status: resp.StatusCode, message: m}
			}
		}
	}
	return &statusError{status: resp.StatusCode, message: resp.Status}
}

// statusError carries the backend's status code and verbatim message.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

// wrapError maps low-level failures to user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if se, ok := err.(*statusError); ok {
		switch se.status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("session expired or revoked (run: taskdeck login): %s", se.message)
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
		return err
	}

	if strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	return err
}
