// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatsvc "github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/transcript"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type plainBody struct{}

func (plainBody) Render(text string, _ int) (string, error) { return text, nil }

type assistantFunc func(ctx context.Context, message string, history []model.Message) (string, error)

func (f assistantFunc) Chat(ctx context.Context, message string, history []model.Message) (string, error) {
	return f(ctx, message, history)
}

type fakeRecognizer struct {
	text string
	err  error
}

func (fakeRecognizer) Available() bool { return true }

func (r fakeRecognizer) Recognize(context.Context) (string, error) { return r.text, r.err }

type fakeSOS struct {
	msg string
	err error
}

func (fakeSOS) SOSProfile(context.Context, string) (*model.SOSProfile, error) { return nil, nil }
func (fakeSOS) SaveSOSProfile(context.Context, *model.SOSProfile) error        { return nil }
func (f fakeSOS) TriggerSOS(context.Context, string) (string, error)           { return f.msg, f.err }

func newModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Session == nil {
		reply := assistantFunc(func(_ context.Context, msg string, _ []model.Message) (string, error) {
			if msg == "hello" {
				return "Hi there", nil
			}
			return "", errors.New("down")
		})
		opts.Session = chatsvc.NewSession(transcript.New(nil), chatsvc.NewDispatcher(reply, time.Second), opts.Recognizer != nil)
	}
	opts.Theme = styles.NewTheme(styles.ThemeDark)
	opts.Body = plainBody{}
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and returns the first message of type T it yields.
func run[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if got, ok := c().(T); ok {
				return got
			}
		}
	}
	got, ok := msg.(T)
	require.True(t, ok, "no %T produced", got)
	return got
}

// =============================================================================
// SEND
// =============================================================================

func TestModel_SendAndReply(t *testing.T) {
	m := newModel(t, Options{})
	assert.Contains(t, m.View(), model.GreetingText)

	m, cmd := press(t, m, typeText("hello"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, chatsvc.StateAwaitingReply, m.session.State())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Waiting for a reply")

	reply := run[ReplyMsg](t, cmd)
	assert.Equal(t, "Hi there", reply.Reply.Text)

	m, _ = press(t, m, reply)
	assert.Equal(t, chatsvc.StateIdle, m.session.State())
	msgs := m.session.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello", msgs[1].Text)
	assert.Equal(t, "Hi there", msgs[2].Text)
	assert.Contains(t, m.View(), "Hi there")
	assert.True(t, m.viewport.AtBottom())
}

func TestModel_FailedReplyShowsFallback(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := press(t, m, typeText("anything"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, run[ReplyMsg](t, cmd))

	last := m.session.Messages()[2]
	assert.True(t, last.IsError)
	assert.Equal(t, model.FallbackErrorText, last.Text)
}

func TestModel_BlankSendIsNoop(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := press(t, m, typeText("   "), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.session.Messages(), 1)
}

func TestModel_SecondSendWhileAwaitingIgnored(t *testing.T) {
	m := newModel(t, Options{})
	m, _ = press(t, m, typeText("hello"), tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := press(t, m, typeText("again"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.session.Messages(), 2)
	assert.Equal(t, "again", m.input.Value())
}

// =============================================================================
// VOICE
// =============================================================================

func TestModel_VoiceAppendsToInput(t *testing.T) {
	m := newModel(t, Options{Recognizer: fakeRecognizer{text: "chest pain"}})
	m, cmd := press(t, m, typeText("I have"), tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, chatsvc.VoiceListening, m.session.Voice())
	assert.Contains(t, m.View(), "Listening")

	m, _ = press(t, m, run[VoiceResultMsg](t, cmd))
	assert.Equal(t, "I have chest pain", m.input.Value())
	assert.Len(t, m.session.Messages(), 1, "voice never sends")
	assert.Equal(t, chatsvc.VoiceReady, m.session.Voice())
}

func TestModel_VoiceErrorDisables(t *testing.T) {
	m := newModel(t, Options{Recognizer: fakeRecognizer{err: errors.New("mic")}})
	m, cmd := press(t, m, typeText("typed"), tea.KeyMsg{Type: tea.KeyCtrlR})
	m, _ = press(t, m, run[VoiceResultMsg](t, cmd))

	assert.Equal(t, chatsvc.VoiceDisabled, m.session.Voice())
	assert.Equal(t, "typed", m.input.Value())

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
	assert.Equal(t, noticeVoiceDisabled, m.notice)
}

func TestModel_VoiceUnavailable(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
	assert.Equal(t, noticeVoiceUnavailable, m.notice)
	assert.NotContains(t, m.renderStatusBar(), "ctrl+r")
}

func TestModel_VoiceShortcutHiddenWhileAwaiting(t *testing.T) {
	m := newModel(t, Options{Recognizer: fakeRecognizer{text: "hi"}})
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	assert.Contains(t, m.renderStatusBar(), "ctrl+r")

	m, _ = press(t, m, typeText("hello"), tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, chatsvc.StateAwaitingReply, m.session.State())
	assert.NotContains(t, m.renderStatusBar(), "ctrl+r")
}

// =============================================================================
// CLEAR AND SOS
// =============================================================================

func TestModel_ClearConfirm(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := press(t, m, typeText("hello"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, run[ReplyMsg](t, cmd))
	require.Len(t, m.session.Messages(), 3)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Contains(t, m.View(), "Clear chat history?")
	m, _ = press(t, m, typeText("n"))
	assert.Len(t, m.session.Messages(), 3)
	assert.NotContains(t, m.View(), "Clear chat history?")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL}, typeText("y"))
	assert.Equal(t, []model.Message{model.Greeting()}, m.session.Messages())
	assert.Equal(t, noticeCleared, m.notice)
}

func TestModel_ClearRefusedWhileAwaiting(t *testing.T) {
	m := newModel(t, Options{})
	m, _ = press(t, m, typeText("hello"), tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, confirmNone, m.confirm)
	assert.Equal(t, noticeClearBusy, m.notice)
}

func TestModel_SOSRequiresLogin(t *testing.T) {
	m := newModel(t, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, sos.MsgLoginToAlert, m.notice)
	assert.True(t, m.noticeErr)
}

func TestModel_SOSAlert(t *testing.T) {
	tests := []struct {
		name    string
		client  fakeSOS
		want    string
		wantErr bool
	}{
		{"sent", fakeSOS{msg: "SOS alert sent to your contacts"}, "SOS alert sent to your contacts", false},
		{"failed", fakeSOS{err: errors.New("down")}, sos.MsgAlertFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := sos.New(tt.client, "u1")
			require.NoError(t, err)
			m := newModel(t, Options{SOS: svc})

			m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlE}, typeText("y"))
			assert.True(t, m.alerting)

			m, _ = press(t, m, run[AlertResultMsg](t, cmd))
			assert.False(t, m.alerting)
			assert.Equal(t, tt.want, m.notice)
			assert.Equal(t, tt.wantErr, m.noticeErr)
		})
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, Options{})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(Options{
		Session: chatsvc.NewSession(transcript.New(nil), chatsvc.NewDispatcher(nil, time.Second), false),
		Theme:   styles.NewTheme(styles.ThemeDark),
		Body:    plainBody{},
	})
	assert.Equal(t, "Loading...", m.View())
}
