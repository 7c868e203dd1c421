// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// Shared styles for command output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Red)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.SuccessHighContrast).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true)

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)
)

// printWarning writes a non-fatal problem to w.
func printWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.RenderWarning("Warning: "+msg))
}
