// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/persona-desk/internal/model"
	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(components.RenderPersonaRow(m.theme, m.registry, m.conv.ActivePersona()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.typingLine())
	b.WriteString("\n")
	b.WriteString(m.inputArea())
	return b.String()
}

func (m *Model) typingLine() string {
	if !m.typing {
		return ""
	}
	name := m.activeName()
	return m.theme.TimeCaption.Render(m.spin.View() + " " + name + " is typing")
}

func (m *Model) inputArea() string {
	if m.attaching {
		return m.theme.InputPrompt.Render("Attach: ") + m.pathInput.View()
	}
	return m.input.View()
}

// refreshViewport rebuilds the scrollback from the conversation snapshot
// and pins the view to the newest entry.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m *Model) renderLog() string {
	if m.conv.IsEmpty() {
		return m.theme.EmptyHint.Render("Start a conversation with " + m.activeName())
	}

	msgs := m.conv.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg *model.Message) string {
	maxBubble := m.viewport.Width * 3 / 4
	if maxBubble < 20 {
		maxBubble = 20
	}

	caption := m.theme.RoleCaption.Render(m.roleLabel(msg.Role)) + " " +
		m.theme.TimeCaption.Render(msg.Timestamp.Format("15:04"))

	content := msg.Content
	if !msg.Role.IsUser() && !msg.Role.IsSystem() && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	var bubble string
	if msg.Role.IsUser() {
		bubble = m.theme.UserBubble.MaxWidth(maxBubble).Render(content)
	} else {
		bubble = m.theme.SystemBubble.MaxWidth(maxBubble).Render(content)
	}

	block := caption + "\n" + bubble
	if msg.HasAttachments() {
		chips := make([]string, 0, len(msg.Attachments))
		for _, a := range msg.Attachments {
			chips = append(chips, m.theme.Attachment.Render("["+a.Name+"]"))
		}
		block += "\n" + strings.Join(chips, " ")
	}

	if msg.Role.IsUser() {
		return lipgloss.NewStyle().
			Width(m.viewport.Width).
			Align(lipgloss.Right).
			Render(block)
	}
	return block
}

func (m *Model) roleLabel(r model.Role) string {
	if r.IsUser() {
		return "You"
	}
	if r.IsSystem() {
		return "System"
	}
	if p, err := m.registry.Lookup(persona.ID(r)); err == nil {
		return p.Name
	}
	return r.String()
}

func (m *Model) activeName() string {
	if p, err := m.registry.Lookup(m.conv.ActivePersona()); err == nil {
		return p.Name
	}
	return m.conv.ActivePersona().String()
}
