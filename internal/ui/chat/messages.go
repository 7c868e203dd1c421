// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	chatsvc "github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/speech"
)

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of a dispatched exchange.
type ReplyMsg struct {
	Exchange chatsvc.Exchange
	Reply    model.Message
}

// VoiceResultMsg carries the outcome of a listening session.
type VoiceResultMsg struct {
	Text string
	Err  error
}

// AlertResultMsg carries the outcome of an SOS alert.
type AlertResultMsg struct {
	Text string
	Err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

func dispatchCmd(ctx context.Context, d *chatsvc.Dispatcher, ex chatsvc.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Exchange: ex, Reply: d.Dispatch(ctx, ex)}
	}
}

func recognizeCmd(ctx context.Context, r speech.Recognizer) tea.Cmd {
	return func() tea.Msg {
		text, err := r.Recognize(ctx)
		return VoiceResultMsg{Text: text, Err: err}
	}
}

func alertCmd(ctx context.Context, svc *sos.Service) tea.Cmd {
	return func() tea.Msg {
		text, err := svc.Alert(ctx)
		return AlertResultMsg{Text: text, Err: err}
	}
}
