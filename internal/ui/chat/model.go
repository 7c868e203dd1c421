// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat screen.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	chatsvc "github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/speech"
	"github.com/jeranaias/medai-tui/internal/ui/components"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// Notices shown under the transcript.
const (
	noticeVoiceUnavailable = "Voice input is not available on this system."
	noticeVoiceDisabled    = "Voice input is turned off after an error. Restart to try again."
	noticeVoiceBusy        = "Voice input is unavailable while waiting for a reply."
	noticeVoiceFailed      = "Voice input failed and has been turned off."
	noticeClearBusy        = "Wait for the current reply before clearing the chat."
	noticeCleared          = "Chat history cleared."
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmClear
	confirmSOS
)

// Options configures a chat screen.
type Options struct {
	// Context bounds every network call and store write. Defaults to Background.
	Context context.Context

	Session    *chatsvc.Session
	Recognizer speech.Recognizer

	// SOS is nil when no user is configured.
	SOS *sos.Service

	Theme    *styles.Theme
	Body     components.BodyRenderer
	WordWrap int
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx        context.Context
	session    *chatsvc.Session
	recognizer speech.Recognizer
	sos        *sos.Service

	theme    *styles.Theme
	body     components.BodyRenderer
	wordWrap int
	keys     KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	confirm   confirmKind
	alerting  bool
	notice    string
	noticeErr bool

	renderedVersion uint64
	renderedWidth   int
}

// New creates the chat screen.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	rec := opts.Recognizer
	if rec == nil {
		rec = speech.None{}
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeAuto)
	}
	body := opts.Body
	if body == nil {
		body = components.NewMarkdownRenderer(components.GlamourStyle(theme.Name), true)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe your symptoms or ask a health question..."
	ti.CharLimit = 2000
	ti.PromptStyle = theme.InputPrompt
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    spinner.Line.FPS,
	}
	sp.Style = theme.Spinner

	return Model{
		ctx:        ctx,
		session:    opts.Session,
		recognizer: rec,
		sos:        opts.SOS,
		theme:      theme,
		body:       body,
		wordWrap:   opts.WordWrap,
		keys:       DefaultKeyMap(),
		viewport:   viewport.New(80, 20),
		input:      ti,
		spinner:    sp,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		m.session.Resolve(m.ctx, msg.Reply)
		m.refresh()
		return m, nil

	case VoiceResultMsg:
		m.session.EndListening(msg.Text, msg.Err)
		if msg.Err != nil {
			m.setNotice(noticeVoiceFailed, true)
		}
		m.input.SetValue(m.session.Input())
		m.input.CursorEnd()
		return m, nil

	case AlertResultMsg:
		m.alerting = false
		m.setNotice(msg.Text, msg.Err != nil)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.ready = true

	const promptLen = 2
	inputWidth := m.width - 4 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.layout()
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.confirm != confirmNone {
		return m.handleConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.send()

	case key.Matches(msg, m.keys.Voice):
		return m.listen()

	case key.Matches(msg, m.keys.Clear):
		if m.session.State() != chatsvc.StateIdle {
			m.setNotice(noticeClearBusy, true)
			return m, nil
		}
		m.askConfirm(confirmClear)
		return m, nil

	case key.Matches(msg, m.keys.SOS):
		if m.sos == nil {
			m.setNotice(sos.MsgLoginToAlert, true)
			return m, nil
		}
		if !m.alerting {
			m.askConfirm(confirmSOS)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	m.notice = ""
	return m, cmd
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.confirm
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.askConfirm(confirmNone)
		if kind == confirmSOS {
			m.alerting = true
			m.notice = ""
			return m, tea.Batch(alertCmd(m.ctx, m.sos), m.spinner.Tick)
		}
		if m.session.Clear(m.ctx) {
			m.setNotice(noticeCleared, false)
		} else {
			m.setNotice(noticeClearBusy, true)
		}
		m.refresh()
	case key.Matches(msg, m.keys.No):
		m.askConfirm(confirmNone)
	}
	return m, nil
}

func (m Model) send() (tea.Model, tea.Cmd) {
	m.session.SetInput(m.input.Value())
	ex, ok := m.session.Submit(m.ctx)
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.notice = ""
	m.refresh()
	return m, tea.Batch(dispatchCmd(m.ctx, m.session.Dispatcher(), ex), m.spinner.Tick)
}

func (m Model) listen() (tea.Model, tea.Cmd) {
	m.session.SetInput(m.input.Value())
	if !m.session.BeginListening() {
		switch m.session.Voice() {
		case chatsvc.VoiceUnavailable:
			m.setNotice(noticeVoiceUnavailable, true)
		case chatsvc.VoiceDisabled:
			m.setNotice(noticeVoiceDisabled, true)
		default:
			m.setNotice(noticeVoiceBusy, true)
		}
		return m, nil
	}
	m.notice = ""
	return m, tea.Batch(recognizeCmd(m.ctx, m.recognizer), m.spinner.Tick)
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) askConfirm(kind confirmKind) {
	m.confirm = kind
	m.layout()
}

func (m Model) busy() bool {
	return m.alerting ||
		m.session.State() == chatsvc.StateAwaitingReply ||
		m.session.Voice() == chatsvc.VoiceListening
}

// Fixed rows around the viewport: header, indicator line, input (border + line), status bar.
const chromeHeight = 5

// confirmHeight is the height of the confirmation box.
const confirmHeight = 5

func (m *Model) layout() {
	h := m.height - chromeHeight
	if m.confirm != confirmNone {
		h -= confirmHeight
	}
	if h < 1 {
		h = 1
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m Model) contentWidth() int {
	if m.wordWrap > 0 && m.wordWrap < m.width {
		return m.wordWrap
	}
	return m.width
}

// refresh re-renders the transcript when it or the width changed, scrolling
// to the newest entry whenever the transcript changed.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	v := m.session.Store().Version()
	if v == m.renderedVersion && m.width == m.renderedWidth && m.renderedWidth != 0 {
		return
	}
	m.viewport.SetContent(components.RenderTranscript(m.session.Messages(), m.contentWidth(), m.body, m.theme))
	if v != m.renderedVersion || m.renderedWidth == 0 {
		m.viewport.GotoBottom()
	}
	m.renderedVersion = v
	m.renderedWidth = m.width
}
