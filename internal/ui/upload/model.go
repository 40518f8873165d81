// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/persona-desk/internal/backend"
	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/transfer"
	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/ui/styles"
)

const (
	noticeUploadFailed = "Upload failed. Try again."

	// resetAfter keeps the finished progress bar on screen briefly
	// before the view returns to idle.
	resetAfter = 800 * time.Millisecond
)

// stage is the upload view's lifecycle.
type stage int

const (
	stageIdle stage = iota
	stageUploading
	stageDone
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the upload view: a persona selector, a path prompt, and a
// progress bar for the transfer in flight.
type Model struct {
	theme    *styles.Theme
	registry persona.Registry
	keys     KeyMap
	client   *backend.Client
	tracker  *transfer.Tracker

	// send delivers progress messages from the request goroutine into
	// the program loop. Wired to tea.Program.Send by the root model.
	send func(tea.Msg)

	active    persona.ID
	pathInput textinput.Model
	bar       progress.Model

	stage     stage
	current   transfer.Key
	localName string
	localSize int64
	percent   int
	status    string
	statusErr bool

	width  int
	height int

	epoch     int
	ctx       context.Context
	cancelMgr *components.CancelManager
}

// New creates the upload view. The send function must deliver messages
// into the running program; until the program starts it may be a no-op.
func New(theme *styles.Theme, reg persona.Registry, client *backend.Client, tracker *transfer.Tracker, active persona.ID, send func(tea.Msg)) *Model {
	pathInput := textinput.New()
	pathInput.Placeholder = "Path to document..."
	pathInput.Focus()

	m := &Model{
		theme:     theme,
		registry:  reg,
		keys:      DefaultKeyMap(),
		client:    client,
		tracker:   tracker,
		send:      send,
		active:    active,
		pathInput: pathInput,
		bar:       progress.New(progress.WithDefaultGradient()),
		cancelMgr: components.NewCancelManager(),
	}
	m.newViewContext()
	return m
}

// SetClient swaps the backend client after a config reload.
func (m *Model) SetClient(client *backend.Client) {
	m.client = client
}

// SetSend wires the program's Send function once the program exists.
func (m *Model) SetSend(send func(tea.Msg)) {
	m.send = send
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = width - 10
	barWidth := width - 12
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.bar.Width = barWidth
}

// Teardown bumps the epoch and cancels any in-flight upload.
func (m *Model) Teardown() {
	m.epoch++
	m.cancelMgr.Cancel()
}

func (m *Model) newViewContext() {
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	m.cancelMgr.Set(cancel)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message and returns any follow-up command.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case ProgressMsg:
		if msg.Epoch != m.epoch || msg.Key != m.current {
			return nil
		}
		m.tracker.UpdateProgress(msg.Key, msg.Percent)
		if st, ok := m.tracker.Get(msg.Key); ok {
			m.percent = st.Progress
		}
		return nil

	case DoneMsg:
		// Settle the shared tracker before the guards; a stale result
		// still owns its slot and must release it. Only the view-local
		// fields below are epoch-scoped.
		m.tracker.Complete(msg.Key, msg.Err == nil)
		if msg.Epoch != m.epoch || msg.Key != m.current {
			m.tracker.Reset(msg.Key)
			return nil
		}
		m.stage = stageDone
		if msg.Err != nil {
			m.status = noticeUploadFailed
			m.statusErr = true
		} else {
			m.percent = 100
			m.status = "Uploaded " + msg.Filename + " to " + m.activeName()
			m.statusErr = false
		}
		return m.resetCmd(msg.Key)

	case resetMsg:
		if msg.Epoch != m.epoch {
			return nil
		}
		m.tracker.Reset(msg.Key)
		if msg.Key == m.current {
			m.stage = stageIdle
			m.current = transfer.Key{}
			m.localName = ""
			m.localSize = 0
			m.percent = 0
		}
		return nil
	}

	return nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Start):
		return m.startUpload()

	case key.Matches(msg, m.keys.CyclePersona):
		if m.stage != stageUploading {
			m.active = components.NextPersona(m.registry, m.active)
		}
		return nil

	case key.Matches(msg, m.keys.Clear):
		if m.stage != stageUploading {
			m.pathInput.SetValue("")
			m.status = ""
		}
		return nil
	}

	if m.stage == stageUploading {
		return nil
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// startUpload validates the path and begins the transfer. One upload at
// a time per view; the tracker carries the per-file state.
func (m *Model) startUpload() tea.Cmd {
	if m.stage == stageUploading {
		return nil
	}
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		m.status = noticeUploadFailed
		m.statusErr = true
		return nil
	}

	m.localName = filepath.Base(path)
	m.localSize = info.Size()
	m.percent = 0
	m.status = "Uploading " + m.localName + "..."
	m.statusErr = false
	m.stage = stageUploading
	m.pathInput.SetValue("")

	m.current = m.tracker.Begin(m.active, m.localName, transfer.KindUpload)
	return m.uploadCmd(m.current, path)
}

func (m *Model) uploadCmd(opKey transfer.Key, path string) tea.Cmd {
	epoch := m.epoch
	ctx := m.ctx
	client := m.client
	send := m.send
	return func() tea.Msg {
		progressFn := func(percent int) {
			if send != nil {
				send(ProgressMsg{Epoch: epoch, Key: opKey, Percent: percent})
			}
		}
		filename, err := client.Upload(ctx, opKey.Persona, path, progressFn)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return DoneMsg{Epoch: epoch, Key: opKey, Filename: filename, Err: err}
	}
}

func (m *Model) resetCmd(opKey transfer.Key) tea.Cmd {
	epoch := m.epoch
	return tea.Tick(resetAfter, func(time.Time) tea.Msg {
		return resetMsg{Epoch: epoch, Key: opKey}
	})
}

func (m *Model) activeName() string {
	if p, err := m.registry.Lookup(m.active); err == nil {
		return p.Name
	}
	return m.active.String()
}
