package api

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
)

const (
	pathSuggestions    = "/brainstorm/get-suggestions"
	pathAddCard        = "/brainstorm/add-card"
	pathUpdatePosition = "/brainstorm/update-card-position"
	pathUpdateCard     = "/brainstorm/update-card"
	pathDeleteCard     = "/brainstorm/delete-card"
	pathClearAll       = "/brainstorm/clear-all"
	pathFinishSession  = "/brainstorm/finish-session"
	pathCreateGroup    = "/brainstorm/create-group"
	pathExport         = "/brainstorm/export"

	headerRequestID = "X-Request-ID"

	// Error bodies are only read for the log line.
	maxErrorBody = 1024
)

// Client talks to the brainstorm backend. It is safe for concurrent use: the TUI issues calls
// from several tea.Cmd goroutines at once.
type Client struct {
	baseURL   string
	http      *http.Client
	log       *zap.Logger
	userAgent string
	newID     func() string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (tests pass the httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = strings.TrimSpace(ua) }
}

// New returns a client rooted at baseURL (scheme + host + optional path prefix, without the
// /brainstorm segment).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &InitializationError{Message: fmt.Sprintf("invalid backend URL %q", baseURL), Err: err}
	}
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		log:       zap.NewNop(),
		userAgent: "brainboard",
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request and decodes a 2xx JSON body into out. Non-2xx statuses, transport
// failures and undecodable bodies all come back as *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) (string, error) {
	reqID := c.newID()
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return reqID, &TransportError{Op: op, RequestID: reqID, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return reqID, &TransportError{Op: op, RequestID: reqID, Err: fmt.Errorf("create request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return reqID, &TransportError{Op: op, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Debug("non-success status", zap.String("op", op), zap.String("request_id", reqID), zap.ByteString("body", snippet))
		te := &TransportError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, RequestID: reqID}
		// The backend explains 4xx/5xx answers with the usual success:false envelope.
		var env envelope
		if json.Unmarshal(snippet, &env) == nil && !env.Success {
			te.Message = env.failure()
		}
		return reqID, te
	}

	if out == nil {
		return reqID, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return reqID, &TransportError{Op: op, RequestID: reqID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return reqID, nil
}

// failure picks the backend's explanation out of a success:false envelope.
func (e envelope) failure() string {
	if msg := strings.TrimSpace(e.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(e.Message)
}

func (e envelope) check(op, reqID string) error {
	if e.Success {
		return nil
	}
	return &ApplicationError{Op: op, Message: e.failure(), RequestID: reqID}
}
