// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/persona-desk/internal/ui/styles"
	"github.com/morganforge/persona-desk/internal/util"
)

// Tab identifies one of the top-level views.
type Tab int

const (
	TabChat Tab = iota
	TabUpload
	TabFiles
)

// String returns the tab's display label.
func (t Tab) String() string {
	switch t {
	case TabUpload:
		return "Upload"
	case TabFiles:
		return "Files"
	default:
		return "Chat"
	}
}

// Next cycles to the following tab.
func (t Tab) Next() Tab {
	return (t + 1) % 3
}

// Prev cycles to the preceding tab.
func (t Tab) Prev() Tab {
	return (t + 2) % 3
}

// RenderTabs renders the tab strip with the active tab highlighted.
func RenderTabs(theme *styles.Theme, active Tab) string {
	parts := make([]string, 0, 3)
	for _, t := range []Tab{TabChat, TabUpload, TabFiles} {
		if t == active {
			parts = append(parts, theme.TabActive.Render(t.String()))
		} else {
			parts = append(parts, theme.TabInactive.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}

// StatusBar renders the bottom status line: backend target on the left,
// transfer activity and key hints on the right.
func StatusBar(theme *styles.Theme, width int, backendURL string, inFlight int, hint string) string {
	left := util.TruncateWidth(backendURL, width/3)

	right := hint
	if inFlight > 0 {
		right = fmt.Sprintf("%d transfer(s) active  %s", inFlight, hint)
	}

	gap := width - util.StringWidth(left) - util.StringWidth(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(width).Render(line)
}
