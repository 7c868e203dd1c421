// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	chatsvc "github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/ui/components"
)

const (
	title    = "MedAI Health Assistant"
	subtitle = "Emergency? ctrl+e sends SOS"
)

func (m Model) renderChat() string {
	if !m.ready {
		return "Loading..."
	}

	parts := []string{
		components.RenderHeader(m.theme, m.width, title, subtitle),
		m.viewport.View(),
		m.renderIndicator(),
	}
	if box := m.renderConfirm(); box != "" {
		parts = append(parts, box)
	}
	parts = append(parts,
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
		m.renderStatusBar(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderIndicator() string {
	waiting := ""
	switch {
	case m.alerting:
		waiting = "Sending SOS alert..."
	case m.session.Voice() == chatsvc.VoiceListening:
		waiting = "Listening..."
	case m.session.State() == chatsvc.StateAwaitingReply:
		waiting = "Waiting for a reply..."
	}
	if waiting != "" {
		return m.spinner.View() + " " + m.theme.ThinkingText.Render(waiting)
	}
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return m.theme.NoticeError.Render(m.notice)
	}
	return m.theme.NoticeInfo.Render(m.notice)
}

func (m Model) renderConfirm() string {
	switch m.confirm {
	case confirmClear:
		return components.RenderConfirm(m.theme, m.width, "Clear chat history?",
			"The conversation and its saved copy will be removed.")
	case confirmSOS:
		return components.RenderConfirm(m.theme, m.width, "Send SOS alert?",
			"Your emergency contacts will be notified.")
	}
	return ""
}

func (m Model) renderStatusBar() string {
	var shortcuts []components.Shortcut
	for _, b := range m.keys.ShortHelp() {
		if b.Help().Desc == "voice" && !m.session.VoiceAvailable() {
			continue
		}
		shortcuts = append(shortcuts, components.Shortcut{Key: b.Help().Key, Desc: b.Help().Desc})
	}

	voice := m.session.Voice()
	status := "voice: " + voice.String()
	switch voice {
	case chatsvc.VoiceReady:
		status = m.theme.VoiceReady.Render(status)
	case chatsvc.VoiceListening:
		status = m.theme.VoiceActive.Render(status)
	default:
		status = m.theme.VoiceOff.Render(status)
	}
	return components.RenderStatusBar(m.theme, m.width, shortcuts, status)
}
