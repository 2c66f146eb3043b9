// Package apiclient talks to the applications REST endpoint:
//
//	GET    /api/applications/       → JSON array of records
//	POST   /api/applications/       → create, 2xx with the created record
//	DELETE /api/applications/{id}/  → 2xx on success
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobmate/tracker/internal/application"
)

const (
	collectionPath = "/api/applications/"
	defaultTimeout = 15 * time.Second
	requestIDKey   = "X-Request-ID"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op   string // "list", "create" or "delete"
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Code, e.Body)
}

// Client is a thin REST client. It holds no state besides its configuration.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (15 s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client rooted at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every record in server order.
func (c *Client) List(ctx context.Context) ([]application.Record, error) {
	body, err := c.do(ctx, "list", http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}
	records := make([]application.Record, 0)
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("list: decode response: %w", err)
	}
	return records, nil
}

// Create posts a normalized payload and returns the created record.
// A 2xx with an empty or non-record body is still a success; the returned
// record is then zero.
func (c *Client) Create(ctx context.Context, p application.Payload) (application.Record, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return application.Record{}, fmt.Errorf("create: marshal payload: %w", err)
	}
	body, err := c.do(ctx, "create", http.MethodPost, "", raw)
	if err != nil {
		return application.Record{}, err
	}
	var rec application.Record
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &rec); err != nil {
			c.log.Debug("create response is not a record", zap.Error(err))
			return application.Record{}, nil
		}
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id application.ID) error {
	if id == "" {
		return fmt.Errorf("delete: empty id")
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, id, nil)
	return err
}

// do sends one request to the collection, or to the item id when id is set.
// The id is escaped as a single path segment, so "x/y" stays one segment.
func (c *Client) do(ctx context.Context, op, method string, id application.ID, payload []byte) ([]byte, error) {
	u := *c.baseURL
	path := strings.TrimRight(u.Path, "/") + collectionPath
	rawPath := strings.TrimRight(u.EscapedPath(), "/") + collectionPath
	if id != "" {
		path += string(id) + "/"
		rawPath += url.PathEscape(string(id)) + "/"
	}
	u.Path = path
	u.RawPath = rawPath

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDKey, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: http %s: %w", op, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	c.log.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
