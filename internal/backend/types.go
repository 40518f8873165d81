// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the persona assistant API.
package backend

// =============================================================================
// WIRE TYPES
// =============================================================================

// HistoryMessage is one prior exchange entry in a chat request.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Role      string           `json:"role"`
	Messages  []HistoryMessage `json:"messages"`
	UserInput string           `json:"user_input"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Content string `json:"content"`
}

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	Filename string `json:"filename"`
}

// ListFilesResponse is the body returned by GET /files.
type ListFilesResponse struct {
	Files []string `json:"files"`
}

// PreviewURLResponse is the body returned by GET /preview-url.
type PreviewURLResponse struct {
	URL string `json:"url"`
}

// APIError is the error body some endpoints return alongside a non-2xx
// status.
type APIError struct {
	Error string `json:"error"`
}
