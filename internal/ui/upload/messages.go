// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload provides the document upload view for the TUI.
package upload

import (
	"github.com/morganforge/persona-desk/internal/transfer"
)

// ProgressMsg reports mid-flight upload progress. It is delivered from
// the request goroutine through the program's Send function, not through
// a command return value.
type ProgressMsg struct {
	Epoch   int
	Key     transfer.Key
	Percent int
}

// DoneMsg delivers the outcome of an upload.
type DoneMsg struct {
	Epoch    int
	Key      transfer.Key
	Filename string
	Err      error
}

// resetMsg fires after the settle delay and returns the view to idle.
type resetMsg struct {
	Epoch int
	Key   transfer.Key
}
