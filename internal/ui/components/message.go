// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// BodyRenderer turns message text into terminal output of at most width columns.
type BodyRenderer interface {
	Render(text string, width int) (string, error)
}

// bubbleChrome is the horizontal space taken by margin, border and padding.
const bubbleChrome = 8

// RenderMessage renders one transcript entry. A failure while rendering is
// contained here and replaced by an inline notice.
func RenderMessage(msg model.Message, width int, body BodyRenderer, theme *styles.Theme) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get().Warnw("render message panic", "sender", msg.Sender, "panic", r)
			out = RenderFailure(fmt.Sprint(r), theme)
		}
	}()

	inner := width - bubbleChrome
	if inner < 20 {
		inner = 20
	}
	text, err := body.Render(msg.Text, inner)
	if err != nil {
		logging.Get().Infow("render message fail", "sender", msg.Sender, "err", err)
		return RenderFailure(err.Error(), theme)
	}

	var bubble lipgloss.Style
	switch {
	case msg.IsUser():
		bubble = theme.UserBubble
	case msg.IsError:
		bubble = theme.ErrorBubble
	default:
		bubble = theme.AssistantBubble
	}

	return lipgloss.JoinVertical(lipgloss.Left, label(msg, theme), bubble.Render(text))
}

func label(msg model.Message, theme *styles.Theme) string {
	name := msg.Sender.DisplayName()
	if msg.IsError {
		name += " " + styles.StatusIndicators.Error
	}
	l := theme.RoleLabel.Render(name)
	if msg.Timestamp != nil {
		l += " " + theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	if msg.IsUser() {
		return lipgloss.NewStyle().MarginLeft(4).Render(l)
	}
	return l
}

// RenderFailure renders the notice shown in place of a message that could not be rendered.
func RenderFailure(reason string, theme *styles.Theme) string {
	return theme.RenderNotice.Render("Error rendering message: " + reason)
}

// RenderTranscript renders messages in order, one bubble each.
func RenderTranscript(msgs []model.Message, width int, body BodyRenderer, theme *styles.Theme) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, RenderMessage(m, width, body, theme))
	}
	return strings.Join(parts, "\n\n")
}
