// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"strings"

	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/util"
)

// View renders the upload screen.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(components.RenderPersonaRow(m.theme, m.registry, m.active))
	b.WriteString("\n\n")

	b.WriteString(m.theme.InputPrompt.Render("Document: ") + m.pathInput.View())
	b.WriteString("\n\n")

	if m.stage != stageIdle && m.localName != "" {
		meta := m.localName + "  " + util.FormatBytes(m.localSize)
		b.WriteString(m.theme.Attachment.Render(meta))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
		b.WriteString("\n\n")
	}

	if m.status != "" {
		if m.statusErr {
			b.WriteString(m.theme.StatusError.Render(m.status))
		} else {
			b.WriteString(m.theme.StatusOK.Render(m.status))
		}
	}
	return b.String()
}
