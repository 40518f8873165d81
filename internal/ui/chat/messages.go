// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the TUI.
//
// This file defines the Bubble Tea message types used by the chat view.
// Every asynchronous result carries the epoch of the view instance that
// issued it; results from a stale epoch are dropped before any state
// write, which is what keeps late responses from touching a torn-down
// view.
package chat

import (
	"github.com/morganforge/persona-desk/internal/persona"
)

// =============================================================================
// SEND MESSAGES
// =============================================================================

// SendResultMsg delivers the outcome of a chat request.
type SendResultMsg struct {
	Epoch   int
	Persona persona.ID
	Content string
	Err     error
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadResultMsg delivers the outcome of an attach-and-upload started
// from the chat input.
type UploadResultMsg struct {
	Epoch         int
	CorrelationID string
	LocalName     string
	Filename      string
	Err           error
}
