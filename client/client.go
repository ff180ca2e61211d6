// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/civiclink/models"
)

var (
	// ErrSessionExpired is returned from guarded calls when the session
	// has been torn down: the server answered 401, or the stored access
	// token was already expired and could not be refreshed. The session
	// store is empty by the time callers see this error.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated is returned when a guarded call is attempted
	// with no stored session at all. No network traffic happens and no
	// teardown is needed.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStaleResponse is returned when a list response is discarded
	// because a newer request completed first.
	ErrStaleResponse = errors.New("stale response discarded")
)

// APIError is a non-2xx server answer passed through to the caller.
// 401 never surfaces as an APIError; it becomes ErrSessionExpired.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to a civiclink server on behalf of one session namespace.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store
	ns      Namespace
	logger  *slog.Logger

	// onUnauthorized runs after a session teardown, before the guarded
	// call returns ErrSessionExpired. The UI hook.
	onUnauthorized func()

	now func() time.Time

	issuesGuard SequenceGuard
	topicsGuard SequenceGuard
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger attaches a structured logger. Discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithNamespace selects the session namespace; CitizenNamespace is the
// default. Admin sessions never attempt a refresh on 401.
func WithNamespace(ns Namespace) Option {
	return func(c *Client) { c.ns = ns }
}

// WithUnauthorizedHook registers a callback invoked once per teardown.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, store Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		store:   store,
		ns:      CitizenNamespace,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the session namespace this client operates in.
func (c *Client) Namespace() Namespace { return c.ns }

// Do performs an authenticated request. The stored access token is
// attached as a bearer header; headers supplied by the caller are kept.
// A JSON content type is set on requests with a body unless the caller
// chose one.
//
// Session failures follow one rule: by the time Do returns
// ErrSessionExpired the namespace's session has been cleared. Transport
// errors are returned as-is and leave the session alone. Responses other
// than 401, including 4xx/5xx, are returned for the caller to interpret.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, header http.Header) (*http.Response, error) {
	pair, err := c.store.Tokens(c.ns)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if pair == nil {
		return nil, ErrNotAuthenticated
	}

	// Local expiry check: don't send a request we know is doomed.
	// A refresh here consumes the call's single refresh attempt.
	refreshedOnce := false
	if TokenExpired(pair.AccessToken, c.now()) {
		if c.ns == CitizenNamespace {
			if refreshed, err := c.refresh(ctx, pair.RefreshToken); err == nil {
				pair = refreshed
				refreshedOnce = true
			} else {
				c.teardown("access token expired, refresh failed")
				return nil, ErrSessionExpired
			}
		} else {
			c.teardown("access token expired")
			return nil, ErrSessionExpired
		}
	}

	resp, err := c.send(ctx, method, path, body, header, pair.AccessToken)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// Citizen sessions get one refresh and one retry
		if c.ns == CitizenNamespace && !refreshedOnce {
			if refreshed, err := c.refresh(ctx, pair.RefreshToken); err == nil {
				retry, err := c.send(ctx, method, path, body, header, refreshed.AccessToken)
				if err != nil {
					return nil, err
				}
				if retry.StatusCode != http.StatusUnauthorized {
					return retry, nil
				}
				io.Copy(io.Discard, retry.Body)
				retry.Body.Close()
			}
		}

		c.teardown("server rejected the session")
		return nil, ErrSessionExpired
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, header http.Header, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.httpc.Do(req)
}

// refresh exchanges the refresh token for a rotated pair and persists it.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token held")
	}

	payload, _ := json.Marshal(models.RefreshRequest{RefreshToken: refreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var rotated models.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rotated); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}

	pair := TokenPair{AccessToken: rotated.AccessToken, RefreshToken: rotated.RefreshToken}
	if err := c.store.SetTokens(c.ns, pair); err != nil {
		return nil, fmt.Errorf("persist rotated tokens: %w", err)
	}

	c.logger.Info("session refreshed", "namespace", c.ns.name)
	return &pair, nil
}

// teardown clears the namespace's session. Clearing is idempotent, so a
// second teardown racing the first is harmless. Only the active namespace
// is touched.
func (c *Client) teardown(reason string) {
	if err := c.store.Clear(c.ns); err != nil {
		c.logger.Error("failed to clear session", "namespace", c.ns.name, "error", err)
	}
	c.logger.Warn("session torn down", "namespace", c.ns.name, "reason", reason)
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// doJSON wraps Do for endpoints with JSON in and out. A nil out discards
// the response body. Non-2xx answers (other than 401) come back as
// *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	resp, err := c.Do(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp, out)
}

// postJSON performs an unauthenticated JSON request (login, register).
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp, out)
}

// getJSON performs an unauthenticated GET (public listings).
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp, out)
}

func decodeJSON(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The server envelope is {"error": status text, "message": detail};
		// prefer the detail, then the error field, then the raw status.
		var apiErr models.ErrorResponse
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			switch {
			case apiErr.Message != "":
				msg = apiErr.Message
			case apiErr.Error != "":
				msg = apiErr.Error
			}
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
