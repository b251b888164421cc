// Package api is the HTTP client for the chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mayike4315/gpt-web/internal"
)

const (
	// DefaultTimeout bounds every request
	DefaultTimeout = internal.DefaultAPITimeout

	// UIDHeader carries the session identity
	UIDHeader = "uid"

	chatPath  = "chat"
	closePath = "closeSse"
)

// Client talks to the chat backend. Every request carries the identity
// read from the SessionContext at call time.
type Client struct {
	baseURL    string
	session    internal.SessionContext
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout replaces the default request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient uses a copy of hc for requests. Its timeout is kept unless
// it is zero, in which case the default applies; hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		copied := *hc
		if copied.Timeout == 0 {
			copied.Timeout = c.httpClient.Timeout
		}
		c.httpClient = &copied
	}
}

// NewClient builds a client for baseURL
func NewClient(baseURL string, session internal.SessionContext, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url is not configured")
	}
	if session == nil {
		session = internal.StaticSession("")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the request timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// SendChat posts params to the chat endpoint
func (c *Client) SendChat(ctx context.Context, params any) (*Response, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal chat params: %w", err)
	}
	return c.do(ctx, "chat", http.MethodPost, chatPath, body)
}

// CloseStream asks the backend to end the server-sent event stream
func (c *Client) CloseStream(ctx context.Context) (*Response, error) {
	return c.do(ctx, "close", http.MethodGet, closePath, nil)
}

// Ping checks that the backend answers at its base URL. It sends a HEAD
// request, so no chat state changes; any status below 500 counts as up.
func (c *Client) Ping(ctx context.Context) (err error) {
	target := c.baseURL + "/"

	ctx, span := internal.Tracer().Start(ctx, "api.ping")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		internal.RecordOperation(ctx, "api", "ping", err)
	}()

	req, err := c.newRequest(ctx, http.MethodHead, target, nil)
	if err != nil {
		return err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "ping", URL: target, Err: err}
	}
	_ = httpResp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	if httpResp.StatusCode >= 500 {
		return &NetworkError{Op: "ping", URL: target, StatusCode: httpResp.StatusCode}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	uid, err := c.session.UID()
	if err != nil {
		return nil, fmt.Errorf("read session id: %w", err)
	}
	if uid != "" {
		req.Header.Set(UIDHeader, uid)
	}
	return req, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (resp *Response, err error) {
	target := c.url(path)

	ctx, span := internal.Tracer().Start(ctx, "api."+op)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		internal.RecordOperation(ctx, "api", op, err)
	}()

	req, err := c.newRequest(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	internal.LogDebug("%s %s", method, target)
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		internal.LogDebug("%s %s returned %d: %s", method, target, httpResp.StatusCode, string(data))
		return nil, &NetworkError{Op: op, URL: target, StatusCode: httpResp.StatusCode, Body: data}
	}

	return &Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
