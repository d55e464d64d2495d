// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend is the HTTP client for the external content API that
// owns translations, menus, footer blocks and tabs. The console holds no
// business data of its own; every mutation ends up here.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AuthSession supplies the bearer token for backend requests and a
// refresh hook invoked once when a request comes back 401.
type AuthSession interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// StaticToken is an AuthSession backed by a fixed token with no refresh.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Refresh is a no-op; a static token cannot be refreshed.
func (t StaticToken) Refresh(context.Context) error {
	return fmt.Errorf("static token cannot be refreshed")
}

// RequestError is a backend rejection or transport-level failure carrying
// the backend-supplied message when one was returned.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

// Error returns the backend message, or the generic fallback shown to the
// operator when the backend did not explain itself.
func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Ошибка запроса: %d", e.Status)
}

// Client talks to the content backend. All methods issue a single attempt;
// the only built-in retry is one token refresh on 401.
type Client struct {
	baseURL string
	http    *http.Client
	auth    AuthSession
	logger  *slog.Logger
}

// New creates a backend client for the given base URL.
func New(baseURL string, auth AuthSession, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		auth:    auth,
		logger:  logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client (used in tests and
// for custom transports).
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// backendError mirrors the backend's error envelope.
type backendError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// do issues one JSON request. On 401 the auth session is refreshed and the
// request retried exactly once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		if refreshErr := c.auth.Refresh(ctx); refreshErr != nil {
			return &RequestError{Status: http.StatusUnauthorized, Message: ""}
		}
		resp, err = c.send(ctx, method, path, query, body)
		if err != nil {
			return err
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asRequestError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// send builds and issues a single request with the current bearer token.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Status: 0, Message: err.Error()}
	}
	return resp, nil
}

// authorize attaches the bearer token. Every request is authorized, GETs
// included: the backend treats the whole admin surface as private.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.auth.Token(ctx)
	if err != nil {
		return fmt.Errorf("fetching access token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// jsonDecode decodes a JSON body into out.
func jsonDecode(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// asRequestError drains the response into a RequestError, keeping the
// backend's own message when it sent one.
func (c *Client) asRequestError(resp *http.Response) error {
	reqErr := &RequestError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var be backendError
		if json.Unmarshal(data, &be) == nil {
			reqErr.Code = be.Error.Code
			if be.Error.Message != "" {
				reqErr.Message = be.Error.Message
			} else {
				reqErr.Message = be.Message
			}
		}
	}

	if c.logger != nil {
		c.logger.Warn("backend request failed",
			"status", resp.StatusCode,
			"url", resp.Request.URL.Path,
			"message", reqErr.Message,
		)
	}
	return reqErr
}
