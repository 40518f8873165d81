// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/ui/styles"
)

// RenderPersonaRow renders the persona pills with the selected one
// highlighted in its accent color. Shared by the chat, upload, and files
// views so persona selection looks identical everywhere.
func RenderPersonaRow(theme *styles.Theme, reg persona.Registry, selected persona.ID) string {
	pills := make([]string, 0, reg.Len())
	for _, p := range reg.All() {
		if p.ID == selected {
			style := theme.PillSelected.Foreground(p.Color).BorderForeground(p.Color)
			pills = append(pills, style.Render(p.Name))
			continue
		}
		pills = append(pills, theme.Pill.Render(p.Name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, pills...)
}

// NextPersona returns the persona after current in display order,
// wrapping around.
func NextPersona(reg persona.Registry, current persona.ID) persona.ID {
	all := reg.All()
	for i, p := range all {
		if p.ID == current {
			return all[(i+1)%len(all)].ID
		}
	}
	return all[0].ID
}
