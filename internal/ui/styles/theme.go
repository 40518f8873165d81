// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components shared by the views. It detects the
// terminal's color capability and adapts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header and tabs
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Message bubbles
	UserBubble   lipgloss.Style
	SystemBubble lipgloss.Style
	RoleCaption  lipgloss.Style
	TimeCaption  lipgloss.Style
	Attachment   lipgloss.Style

	// Persona pills
	PillSelected lipgloss.Style
	Pill         lipgloss.Style

	// Panels and lists
	Panel        lipgloss.Style
	ListRow      lipgloss.Style
	ListSelected lipgloss.Style
	EmptyHint    lipgloss.Style

	// Status line
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	StatusOK    lipgloss.Style

	// Input
	InputPrompt lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	return &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),

		Header:      lipgloss.NewStyle().Background(SurfaceDim).Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().Bold(true).Foreground(Blue),
		TabActive: lipgloss.NewStyle().Bold(true).Foreground(Blue).
			Padding(0, 2).Border(lipgloss.RoundedBorder(), false, false, true, false).
			BorderForeground(Blue),
		TabInactive: lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 2),

		UserBubble: lipgloss.NewStyle().Background(UserBubbleBg).Foreground(UserBubbleFg).
			Padding(0, 1),
		SystemBubble: lipgloss.NewStyle().Background(SystemBubbleBg).Foreground(SystemBubbleFg).
			Padding(0, 1),
		RoleCaption: lipgloss.NewStyle().Bold(true),
		TimeCaption: lipgloss.NewStyle().Foreground(TextMuted),
		Attachment:  lipgloss.NewStyle().Foreground(TextSecondary).Underline(true),

		PillSelected: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Border(lipgloss.RoundedBorder()),
		Pill: lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1).
			Border(lipgloss.HiddenBorder()),

		Panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).Padding(0, 1),
		ListRow:      lipgloss.NewStyle().Foreground(TextPrimary).Padding(0, 1),
		ListSelected: lipgloss.NewStyle().Bold(true).Foreground(Blue).Padding(0, 1),
		EmptyHint:    lipgloss.NewStyle().Foreground(TextMuted).Italic(true),

		StatusBar:   lipgloss.NewStyle().Background(SurfaceDim).Foreground(TextSecondary).Padding(0, 1),
		StatusError: lipgloss.NewStyle().Foreground(Rose).Bold(true),
		StatusOK:    lipgloss.NewStyle().Foreground(Emerald),

		InputPrompt: lipgloss.NewStyle().Foreground(Blue).Bold(true),
	}
}
