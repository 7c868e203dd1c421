// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medai-tui/internal/ui/styles"
	"github.com/jeranaias/medai-tui/internal/util"
)

// Shortcut is a key and its description for the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// RenderHeader renders the full-width title bar.
func RenderHeader(theme *styles.Theme, width int, title, subtitle string) string {
	left := theme.HeaderTitle.Render(title)
	right := theme.HeaderSubtitle.Render(subtitle)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return theme.Header.Width(width).Render(util.TruncateWidth(title, width-2))
	}
	return theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// RenderStatusBar renders shortcuts on the left and status on the right,
// dropping shortcuts from the end until they fit.
func RenderStatusBar(theme *styles.Theme, width int, shortcuts []Shortcut, status string) string {
	avail := width - 2 - lipgloss.Width(status) - 1
	var parts []string
	used := 0
	for _, s := range shortcuts {
		item := theme.ShortcutKey.Render(s.Key) + " " + theme.ShortcutDesc.Render(s.Desc)
		w := lipgloss.Width(item)
		if used > 0 {
			w += 2
		}
		if used+w > avail {
			break
		}
		parts = append(parts, item)
		used += w
	}
	left := strings.Join(parts, "  ")
	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + status)
}

// RenderConfirm renders a yes/no prompt box.
func RenderConfirm(theme *styles.Theme, width int, title, body string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.ConfirmTitle.Render(title),
		body,
		theme.ConfirmKeys.Render("[y] yes   [n] no"),
	)
	box := theme.ConfirmBox
	if width > 8 {
		box = box.MaxWidth(width)
	}
	return box.Render(content)
}
