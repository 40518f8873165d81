// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/morganforge/persona-desk/internal/backend"
	"github.com/morganforge/persona-desk/internal/model"
	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/ui/styles"
)

// Fixed notices, matching the backend-facing product copy. Timeouts and
// unreachable backends get their own wording since the user's remedy
// differs (wait vs. check the backend).
const (
	noticeSendFailed      = "Server error. Try again."
	noticeSendTimeout     = "Request timed out. Try again."
	noticeSendUnreachable = "Cannot reach the assistant. Try again."
	noticeUploadFailed    = "Upload failed. Try again."
)

// sendFailureNotice maps a transport error to its user-facing notice.
func sendFailureNotice(err error) string {
	switch {
	case backend.IsTimeout(err):
		return noticeSendTimeout
	case backend.IsUnreachable(err):
		return noticeSendUnreachable
	default:
		return noticeSendFailed
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view: persona pills, the message log, the typing
// indicator, and the input area with an attach prompt.
type Model struct {
	theme    *styles.Theme
	registry persona.Registry
	keys     KeyMap
	client   *backend.Client

	conv *model.Conversation

	viewport  viewport.Model
	input     textarea.Model
	pathInput textinput.Model
	spin      spinner.Model

	attaching bool // path prompt shown instead of the message input
	typing    bool
	width     int
	height    int
	ready     bool

	renderer *glamour.TermRenderer

	// epoch tags every async result issued by this view instance; ctx is
	// cancelled on teardown so in-flight requests stop early.
	epoch     int
	ctx       context.Context
	cancelMgr *components.CancelManager
}

// New creates the chat view.
func New(theme *styles.Theme, reg persona.Registry, client *backend.Client, active persona.ID) *Model {
	input := textarea.New()
	input.Placeholder = "Message " + active.String() + "..."
	input.CharLimit = 4000
	input.SetHeight(2)
	input.ShowLineNumbers = false
	input.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to document..."

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := &Model{
		theme:     theme,
		registry:  reg,
		keys:      DefaultKeyMap(),
		client:    client,
		conv:      model.NewConversation(active),
		input:     input,
		pathInput: pathInput,
		spin:      spin,
		cancelMgr: components.NewCancelManager(),
	}
	m.newViewContext()
	return m
}

// Conversation exposes the store for the other views and tests.
func (m *Model) Conversation() *model.Conversation {
	return m.conv
}

// SetClient swaps the backend client after a config reload.
func (m *Model) SetClient(client *backend.Client) {
	m.client = client
}

// Teardown bumps the epoch and cancels the view context. Any response
// that arrives afterwards carries a stale epoch and is dropped without
// touching the store.
func (m *Model) Teardown() {
	m.epoch++
	m.typing = false
	m.cancelMgr.Cancel()
}

// Init starts the spinner animation.
func (m *Model) Init() tea.Cmd {
	return m.spin.Tick
}

// SetSize resizes the view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 4
	headerHeight := 3
	vpHeight := height - inputHeight - headerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(width - 4)
	m.pathInput.Width = width - 8

	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshViewport()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message and returns any follow-up command.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.attaching {
			return m.updateAttachPrompt(msg)
		}
		return m.updateInput(msg)

	case SendResultMsg:
		if msg.Epoch != m.epoch {
			return nil
		}
		m.typing = false
		if msg.Err != nil {
			m.conv.AddResult(model.RoleSystem, sendFailureNotice(msg.Err))
		} else {
			m.conv.AddResult(model.Role(msg.Persona), msg.Content)
		}
		m.refreshViewport()
		return nil

	case UploadResultMsg:
		if msg.Epoch != m.epoch {
			return nil
		}
		m.resolveUpload(msg)
		m.refreshViewport()
		return nil

	case spinner.TickMsg:
		if !m.typing {
			return nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// updateInput handles keys while the message input is active.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		return nil

	case key.Matches(msg, m.keys.Attach):
		m.attaching = true
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		m.input.Blur()
		return textinput.Blink

	case key.Matches(msg, m.keys.ClearLog):
		m.conv.Clear()
		m.refreshViewport()
		return nil

	case key.Matches(msg, m.keys.CyclePersona):
		next := components.NextPersona(m.registry, m.conv.ActivePersona())
		m.conv.SetActivePersona(next)
		m.input.Placeholder = "Message " + next.String() + "..."
		m.refreshViewport()
		return nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// updateAttachPrompt handles keys while the path prompt is shown.
func (m *Model) updateAttachPrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.CancelPrompt):
		m.closeAttachPrompt()
		return nil

	case key.Matches(msg, m.keys.Send):
		path := strings.TrimSpace(m.pathInput.Value())
		m.closeAttachPrompt()
		if path == "" {
			return nil
		}
		return m.startUpload(path)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

func (m *Model) closeAttachPrompt() {
	m.attaching = false
	m.pathInput.Blur()
	m.input.Focus()
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit performs the optimistic append and starts the chat request.
// The user message is visible in the log before the network call begins;
// blank input is silently ignored.
func (m *Model) submit() tea.Cmd {
	userMsg, ok := m.conv.AddUserMessage(m.input.Value())
	if !ok {
		return nil
	}
	m.input.Reset()
	m.typing = true
	m.refreshViewport()

	return tea.Batch(
		m.spin.Tick,
		m.sendCmd(m.conv.ActivePersona(), userMsg.Content),
	)
}

// startUpload appends the optimistic placeholder and starts the upload.
// The placeholder's correlation id travels with the command so the
// response resolves this exact entry even when the same file is uploaded
// twice concurrently.
func (m *Model) startUpload(path string) tea.Cmd {
	localName := filepath.Base(path)

	if _, err := os.Stat(path); err != nil {
		m.conv.AddResult(model.RoleSystem, noticeUploadFailed)
		m.refreshViewport()
		return nil
	}

	ph := m.conv.AddPlaceholder("Uploading " + localName + "...")
	m.refreshViewport()
	return m.uploadCmd(m.conv.ActivePersona(), path, localName, ph.CorrelationID)
}

// resolveUpload turns the placeholder into its outcome. Resolution goes
// by correlation id first; content matching (newest placeholder wins) is
// the fallback when the id is gone, e.g. after pruning.
func (m *Model) resolveUpload(msg UploadResultMsg) {
	var result *model.Message
	if msg.Err != nil {
		result = model.NewResult(model.RoleSystem, noticeUploadFailed)
	} else {
		result = model.NewResult(model.RoleSystem,
			"File successfully uploaded: "+msg.Filename,
			model.Attachment{Name: msg.Filename})
	}

	if !m.conv.ResolveByCorrelation(msg.CorrelationID, result) {
		m.conv.ReplaceOrAppendByContent("Uploading "+msg.LocalName+"...", result)
	}
}
