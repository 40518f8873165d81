// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/morganforge/persona-desk/internal/persona"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsUnreachable checks whether an error indicates the backend is down.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks whether an error is a timeout.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the assistant API base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for chat and listing requests (default: 30s). Uploads and
	// downloads run without a client timeout; they are bounded by their
	// request context instead.
	Timeout time.Duration

	// DownloadDir is where fetched documents are written
	// (default: ./downloads).
	DownloadDir string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:     "http://127.0.0.1:8000",
		Timeout:     30 * time.Second,
		DownloadDir: "downloads",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the persona assistant backend.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client, backfilling zero values
// with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DownloadDir == "" {
		config.DownloadDir = "downloads"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends the trimmed user input to POST /chat addressed to the given
// persona and returns the assistant's reply. A 2xx response with empty
// content yields "No response" rather than an empty reply.
//
// The persona id travels as-is in the chat body; only the listing and
// retrieval endpoints lowercase it.
func (c *Client) Chat(ctx context.Context, p persona.ID, history []HistoryMessage, input string) (string, error) {
	if history == nil {
		history = make([]HistoryMessage, 0)
	}
	reqBody := ChatRequest{
		Role:      p.String(),
		Messages:  history,
		UserInput: strings.TrimSpace(input),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("chat request failed", resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.Content == "" {
		return "No response", nil
	}
	return result.Content, nil
}

// =============================================================================
// FILE LISTING
// =============================================================================

// ListFiles fetches the document names stored for a persona. An empty
// list is a valid result, distinct from an error.
func (c *Client) ListFiles(ctx context.Context, p persona.ID) ([]string, error) {
	endpoint := c.config.BaseURL + "/files?persona=" + url.QueryEscape(strings.ToLower(p.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("file listing failed", resp)
	}

	var result ListFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if result.Files == nil {
		return []string{}, nil
	}
	return result.Files, nil
}

// FetchURL asks the backend for a short-lived retrieval URL for one
// document.
func (c *Client) FetchURL(ctx context.Context, p persona.ID, filename string) (string, error) {
	q := url.Values{}
	q.Set("persona", strings.ToLower(p.String()))
	q.Set("filename", filename)
	endpoint := c.config.BaseURL + "/preview-url?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError("retrieval URL request failed", resp)
	}

	var result PreviewURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if result.URL == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "backend returned no retrieval URL"}
	}
	return result.URL, nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// transportError maps transport-level failures onto the client taxonomy.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
	}
	return ErrUnreachable
}

// statusError builds a ClientError from a non-2xx response, using the
// backend's error body when it has one.
func statusError(msg string, resp *http.Response) error {
	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: msg + ": " + resp.Status}
}
