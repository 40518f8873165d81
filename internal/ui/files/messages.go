// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package files provides the document browser view for the TUI.
package files

import (
	"github.com/morganforge/persona-desk/internal/persona"
)

// FilesLoadedMsg delivers the result of a persona-scoped listing.
type FilesLoadedMsg struct {
	Epoch   int
	Persona persona.ID
	Files   []string
	Err     error
}

// DownloadDoneMsg delivers the outcome of a single download.
type DownloadDoneMsg struct {
	Epoch    int
	Persona  persona.ID
	Filename string
	OpID     string
	Path     string
	Err      error
}

// statusClearMsg clears the transient status line.
type statusClearMsg struct {
	Epoch int
}
