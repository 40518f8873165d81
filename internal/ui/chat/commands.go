// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/persona-desk/internal/persona"
)

// sendCmd issues the chat request for the active persona. The optimistic
// user message is already in the log by the time this runs; the command
// only carries the response back.
func (m *Model) sendCmd(p persona.ID, input string) tea.Cmd {
	epoch := m.epoch
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		content, err := client.Chat(ctx, p, nil, input)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return SendResultMsg{Epoch: epoch, Persona: p, Content: content, Err: err}
	}
}

// uploadCmd uploads the file behind an already-appended placeholder and
// reports back with the placeholder's correlation id so the outcome can
// resolve that exact log entry.
func (m *Model) uploadCmd(p persona.ID, path, localName, correlationID string) tea.Cmd {
	epoch := m.epoch
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		filename, err := client.Upload(ctx, p, path, nil)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return UploadResultMsg{
			Epoch:         epoch,
			CorrelationID: correlationID,
			LocalName:     localName,
			Filename:      filename,
			Err:           err,
		}
	}
}

// newViewContext gives the view a fresh context whose cancellation is
// managed by the cancel manager.
func (m *Model) newViewContext() {
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	m.cancelMgr.Set(cancel)
}
