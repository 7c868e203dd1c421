// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the medai TUI.
package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// Glamour standard style names.
const (
	GlamourDark  = "dark"
	GlamourLight = "light"
	GlamourPlain = "notty"
)

// GlamourStyle picks the glamour style for a theme name. Terminals without
// color get the plain style.
func GlamourStyle(theme string) string {
	if termenv.EnvColorProfile() == termenv.Ascii {
		return GlamourPlain
	}
	switch theme {
	case styles.ThemeDark:
		return GlamourDark
	case styles.ThemeLight:
		return GlamourLight
	}
	if termenv.HasDarkBackground() {
		return GlamourDark
	}
	return GlamourLight
}

// MarkdownRenderer renders message text with glamour, caching one renderer per width.
// With markdown disabled it only wraps text.
type MarkdownRenderer struct {
	style   string
	enabled bool

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer using the given glamour style.
func NewMarkdownRenderer(style string, enabled bool) *MarkdownRenderer {
	return &MarkdownRenderer{
		style:     style,
		enabled:   enabled,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Style returns the glamour style name.
func (r *MarkdownRenderer) Style() string {
	return r.style
}

// Render formats text to fit width columns.
func (r *MarkdownRenderer) Render(text string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	if !r.enabled {
		return lipgloss.NewStyle().Width(width).Render(text), nil
	}

	tr, err := r.renderer(width)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(text)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

func (r *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.renderers[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderers[width] = tr
	return tr, nil
}
