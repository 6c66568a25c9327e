// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Arcana backend.
//
// It wraps the REST surface (users, conversations, tarot, astrology)
// and the two streaming chat endpoints. The backend owns all state of
// record; every call here either reads a record or submits a write and
// returns the backend's authoritative replacement.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds non-streaming REST calls. Streaming calls
	// use the separate timeout-free client below.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps REST response bodies.
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// Shared HTTP client with connection pooling for REST requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient has no client timeout: stream duration is
	// open-ended and bounded only by the caller's context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRequestFailed indicates a non-2xx response before any payload
	// was consumed.
	ErrRequestFailed = errors.New("request failed")

	// ErrStreamUnavailable indicates a streaming endpoint responded
	// without a readable body.
	ErrStreamUnavailable = errors.New("response stream unavailable")
)

// APIError is a backend-reported failure. Detail carries the backend's
// message verbatim so forms can surface it unchanged.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("arcana backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("arcana backend error (HTTP %d)", e.Status)
}

// Is allows errors.Is(err, ErrRequestFailed) to match API errors.
func (e *APIError) Is(target error) bool {
	return target == ErrRequestFailed
}

// errorDetail is the backend's error envelope.
type errorDetail struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one Arcana backend instance.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	logger       *log.Logger
}

// NewClient creates a client for the given base URL. An empty base URL
// falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
		logger:       log.Default(),
	}
}

// SetLogger redirects the client's diagnostic output.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON issues a REST request and decodes the JSON response into out
// (which may be nil for calls whose response body is ignored).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Correlation id ties client log lines to backend request logs.
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, MaxResponseSize)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Printf("api: %s %s failed with status %d (request %s)", method, path, resp.StatusCode, requestID)
		return c.errorFromResponse(resp.StatusCode, limited)
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, limited)
		return nil
	}

	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFromResponse builds an APIError from a non-2xx response body.
func (c *Client) errorFromResponse(status int, body io.Reader) error {
	data, _ := io.ReadAll(body)

	var detail errorDetail
	if err := json.Unmarshal(data, &detail); err == nil && detail.Detail != "" {
		return &APIError{Status: status, Detail: detail.Detail}
	}

	// Non-JSON error bodies still get surfaced, trimmed.
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return &APIError{Status: status, Detail: text}
}
