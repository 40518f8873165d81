// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package files

import (
	"strings"

	"github.com/morganforge/persona-desk/internal/transfer"
	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/util"
)

// View renders the document browser.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(components.RenderPersonaRow(m.theme, m.registry, m.active))
	b.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.theme.InputPrompt.Render("Filter: ") + m.search.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.listBody())

	if m.status != "" {
		b.WriteString("\n\n")
		if m.statusErr {
			b.WriteString(m.theme.StatusError.Render(m.status))
		} else {
			b.WriteString(m.theme.StatusOK.Render(m.status))
		}
	}
	return b.String()
}

func (m *Model) listBody() string {
	if m.loading {
		return m.theme.EmptyHint.Render(m.spin.View() + " Loading documents...")
	}
	if m.loadErr {
		return m.theme.StatusError.Render(noticeLoadFailed)
	}

	rows := m.visible()
	if len(rows) == 0 {
		if m.search.Value() != "" {
			return m.theme.EmptyHint.Render("No documents match the filter")
		}
		return m.theme.EmptyHint.Render("No documents found")
	}

	maxRows := m.height - 8
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(rows) {
		end = len(rows)
	}

	rowWidth := m.width - 10
	if rowWidth < 10 {
		rowWidth = 10
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		name := util.PadRight(util.TruncateWidth(rows[i], rowWidth), rowWidth)
		marker := "  "
		if m.tracker.InFlight(m.active, rows[i], transfer.KindDownload) {
			marker = m.spin.View() + " "
		}

		line := marker + name
		if i == m.cursor {
			b.WriteString(m.theme.ListSelected.Render("> " + line))
		} else {
			b.WriteString(m.theme.ListRow.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
