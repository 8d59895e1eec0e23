// Package gameapi is a client for the game server's administrative HTTP API.
//
// Every request carries the shared secret as the "password" query parameter.
// The server answers with {succeeded, data, message}.
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Result is the common response envelope.
type Result struct {
	Succeeded bool            `json:"succeeded"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
}

// Error is returned for transport failures and non-2xx responses.
type Error struct {
	Method     string
	Endpoint   string
	StatusCode int
	// Message is the "message" field of the error payload, when there was one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: request failed with status code %d", e.Method, e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s %s: request failed", e.Method, e.Endpoint)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// PayloadMessage returns the server-supplied message, if any.
func (e *Error) PayloadMessage() string { return e.Message }

// Client talks to one game server.
type Client struct {
	baseURL  string
	password string
	http     *http.Client
	log      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for baseURL (e.g. "http://host:8080").
func New(baseURL, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		password: password,
		http:     &http.Client{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Call performs one request. Parameters travel in the query string for every
// method, next to the shared secret.
func (c *Client) Call(ctx context.Context, method, endpoint string, params url.Values) (*Result, error) {
	q := url.Values{}
	q.Set("password", c.password)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	fail := func(status int, msg string, err error) error {
		apiErr := &Error{Method: method, Endpoint: endpoint, StatusCode: status, Message: msg, Err: stripURL(err)}
		c.log.Warn("api call failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", status),
			zap.Error(apiErr))
		return apiErr
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, "", err)
	}

	var res Result
	decodeErr := json.Unmarshal(body, &res)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if decodeErr == nil {
			msg = res.Message
		}
		return nil, fail(resp.StatusCode, msg, nil)
	}
	if decodeErr != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("decode response: %w", decodeErr))
	}
	return &res, nil
}

// stripURL drops the request URL net/http puts in its errors. The URL carries
// the password.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (*Result, error) {
	res, err := c.Call(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}
	if out != nil && res.Succeeded && len(res.Data) > 0 && string(res.Data) != "null" {
		if err := json.Unmarshal(res.Data, out); err != nil {
			return nil, &Error{Method: http.MethodGet, Endpoint: endpoint, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, endpoint string, params url.Values) (*Result, error) {
	return c.Call(ctx, http.MethodPost, endpoint, params)
}
