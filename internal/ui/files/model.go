// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/persona-desk/internal/backend"
	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/transfer"
	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/ui/styles"
	"github.com/morganforge/persona-desk/internal/util"
)

const (
	noticeLoadFailed = "Unable to load documents."
	statusFlashAfter = 3 * time.Second
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the document browser: a persona-scoped file listing with
// incremental search and per-row downloads.
type Model struct {
	theme    *styles.Theme
	registry persona.Registry
	keys     KeyMap
	client   *backend.Client
	tracker  *transfer.Tracker

	active  persona.ID
	files   []string
	loading bool
	loadErr bool

	search    textinput.Model
	searching bool
	cursor    int
	status    string
	statusErr bool

	spin   spinner.Model
	width  int
	height int

	epoch     int
	ctx       context.Context
	cancelMgr *components.CancelManager
}

// New creates the document browser.
func New(theme *styles.Theme, reg persona.Registry, client *backend.Client, tracker *transfer.Tracker, active persona.ID) *Model {
	search := textinput.New()
	search.Placeholder = "Filter documents..."

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := &Model{
		theme:     theme,
		registry:  reg,
		keys:      DefaultKeyMap(),
		client:    client,
		tracker:   tracker,
		active:    active,
		search:    search,
		spin:      spin,
		cancelMgr: components.NewCancelManager(),
	}
	m.newViewContext()
	return m
}

// SetClient swaps the backend client after a config reload.
func (m *Model) SetClient(client *backend.Client) {
	m.client = client
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 10
}

// Activate starts a fresh load for the active persona. The epoch is
// bumped first so results from any previous activation are dropped.
func (m *Model) Activate() tea.Cmd {
	m.epoch++
	m.cancelMgr.Cancel()
	m.newViewContext()

	m.loading = true
	m.loadErr = false
	m.cursor = 0
	return tea.Batch(m.spin.Tick, m.loadCmd(m.active))
}

// Teardown bumps the epoch and cancels in-flight requests.
func (m *Model) Teardown() {
	m.epoch++
	m.cancelMgr.Cancel()
}

func (m *Model) newViewContext() {
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	m.cancelMgr.Set(cancel)
}

// visible returns the filtered, case-insensitively sorted listing.
func (m *Model) visible() []string {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	out := make([]string, 0, len(m.files))
	for _, f := range m.files {
		if query == "" || strings.Contains(strings.ToLower(f), query) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message and returns any follow-up command.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)

	case FilesLoadedMsg:
		if msg.Epoch != m.epoch || msg.Persona != m.active {
			return nil
		}
		m.loading = false
		if msg.Err != nil {
			m.loadErr = true
			m.files = nil
			return nil
		}
		m.loadErr = false
		m.files = msg.Files
		m.clampCursor()
		return nil

	case DownloadDoneMsg:
		// The tracker is shared application state, so the slot settles
		// even when the result belongs to a torn-down view. Only the
		// view-local status writes below are epoch-scoped; skipping the
		// settle would leave the slot in flight and refuse every retry
		// of the same file.
		opKey := transfer.Key{Persona: msg.Persona, Filename: msg.Filename, OpID: msg.OpID}
		m.tracker.Complete(opKey, msg.Err == nil)
		m.tracker.Reset(opKey)
		if msg.Epoch != m.epoch {
			return nil
		}
		if msg.Err != nil {
			m.status = "Download failed: " + msg.Filename
			m.statusErr = true
		} else {
			m.status = "Downloaded " + util.TruncateRunes(msg.Filename, 48) + " to " + msg.Path
			m.statusErr = false
		}
		return m.clearStatusCmd()

	case statusClearMsg:
		if msg.Epoch != m.epoch {
			return nil
		}
		m.status = ""
		return nil

	case spinner.TickMsg:
		if !m.loading && !m.tracker.Busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return cmd
	}

	return nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return nil

	case key.Matches(msg, m.keys.Download):
		return m.startDownload()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m.Activate()

	case key.Matches(msg, m.keys.CyclePersona):
		m.active = components.NextPersona(m.registry, m.active)
		m.search.SetValue("")
		return m.Activate()
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.CancelSearch):
		m.searching = false
		m.search.Blur()
		return nil

	case key.Matches(msg, m.keys.Download):
		// Enter closes the prompt and keeps the filter applied.
		m.searching = false
		m.search.Blur()
		m.clampCursor()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.clampCursor()
	return cmd
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

// startDownload begins the download under the cursor. A second download
// of the same file for the same persona is refused while one is in
// flight; other files and other personas are unaffected.
func (m *Model) startDownload() tea.Cmd {
	rows := m.visible()
	if len(rows) == 0 {
		return nil
	}
	filename := rows[m.cursor]

	if m.tracker.InFlight(m.active, filename, transfer.KindDownload) {
		return nil
	}
	opKey := m.tracker.Begin(m.active, filename, transfer.KindDownload)
	return tea.Batch(m.spin.Tick, m.downloadCmd(opKey))
}

func (m *Model) loadCmd(p persona.ID) tea.Cmd {
	epoch := m.epoch
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		files, err := client.ListFiles(ctx, p)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return FilesLoadedMsg{Epoch: epoch, Persona: p, Files: files, Err: err}
	}
}

func (m *Model) downloadCmd(opKey transfer.Key) tea.Cmd {
	epoch := m.epoch
	ctx := m.ctx
	client := m.client
	return func() tea.Msg {
		path, err := client.Download(ctx, opKey.Persona, opKey.Filename)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return DownloadDoneMsg{
			Epoch:    epoch,
			Persona:  opKey.Persona,
			Filename: opKey.Filename,
			OpID:     opKey.OpID,
			Path:     path,
			Err:      err,
		}
	}
}

func (m *Model) clearStatusCmd() tea.Cmd {
	epoch := m.epoch
	return tea.Tick(statusFlashAfter, func(time.Time) tea.Msg {
		return statusClearMsg{Epoch: epoch}
	})
}
