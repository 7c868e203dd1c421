// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/medai-tui/internal/backend"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/transcript"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type assistantFunc func(ctx context.Context, message string, history []model.Message) (string, error)

func (f assistantFunc) Chat(ctx context.Context, message string, history []model.Message) (string, error) {
	return f(ctx, message, history)
}

func replyWith(text string) assistantFunc {
	return func(context.Context, string, []model.Message) (string, error) { return text, nil }
}

type serverErr struct{ msg string }

func (e serverErr) Error() string       { return "server error: " + e.msg }
func (e serverErr) UserMessage() string { return e.msg }

func newSession(a Assistant) *Session {
	return NewSession(transcript.New(nil), NewDispatcher(a, time.Second), true)
}

func texts(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

// =============================================================================
// DISPATCHER
// =============================================================================

func TestDispatch_Success(t *testing.T) {
	d := NewDispatcher(replyWith("Hi there"), 0)
	msg := d.Dispatch(context.Background(), Exchange{Message: "hello"})

	assert.Equal(t, model.SenderBot, msg.Sender)
	assert.Equal(t, "Hi there", msg.Text)
	assert.False(t, msg.IsError)
	assert.NotNil(t, msg.Timestamp)
	assert.Equal(t, DefaultTimeout, d.Timeout())
}

func TestDispatch_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assistant Assistant
		want      string
	}{
		{"plain error", assistantFunc(func(context.Context, string, []model.Message) (string, error) {
			return "", errors.New("boom")
		}), model.FallbackErrorText},
		{"server message", assistantFunc(func(context.Context, string, []model.Message) (string, error) {
			return "", serverErr{"Service unavailable, please retry later."}
		}), "Service unavailable, please retry later."},
		{"blank server message", assistantFunc(func(context.Context, string, []model.Message) (string, error) {
			return "", serverErr{"   "}
		}), model.FallbackErrorText},
		{"empty reply", replyWith(""), model.FallbackErrorText},
		{"panic", assistantFunc(func(context.Context, string, []model.Message) (string, error) {
			panic("nil map")
		}), model.FallbackErrorText},
		{"no assistant", nil, model.FallbackErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.assistant, time.Second)
			msg := d.Dispatch(context.Background(), Exchange{Message: "hi"})
			assert.True(t, msg.IsError)
			assert.Equal(t, model.SenderBot, msg.Sender)
			assert.Equal(t, tt.want, msg.Text)
			assert.Nil(t, msg.Timestamp)
		})
	}
}

func TestDispatch_AppliesTimeout(t *testing.T) {
	d := NewDispatcher(assistantFunc(func(ctx context.Context, _ string, _ []model.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), 20*time.Millisecond)

	start := time.Now()
	msg := d.Dispatch(context.Background(), Exchange{Message: "hi"})
	assert.True(t, msg.IsError)
	assert.Less(t, time.Since(start), time.Second)
}

// =============================================================================
// SESSION: SEND
// =============================================================================

func TestSession_EmptyStartHasGreeting(t *testing.T) {
	s := newSession(replyWith("x"))
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.SenderBot, msgs[0].Sender)
	assert.Equal(t, "Hi, I'm your health assistant. How can I help you today?", msgs[0].Text)
}

func TestSession_SendHello(t *testing.T) {
	var gotHistory []model.Message
	s := newSession(assistantFunc(func(_ context.Context, msg string, h []model.Message) (string, error) {
		gotHistory = h
		return "Hi there", nil
	}))
	s.SetInput("hello")

	require.True(t, s.Send(context.Background()))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.NewUserMessage("hello"), msgs[1])
	assert.Equal(t, model.SenderBot, msgs[2].Sender)
	assert.Equal(t, "Hi there", msgs[2].Text)
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Input())

	// History ends with the new user message
	require.Len(t, gotHistory, 2)
	assert.Equal(t, "hello", gotHistory[1].Text)
}

func TestSession_EachExchangeAddsTwo(t *testing.T) {
	calls := 0
	s := newSession(assistantFunc(func(context.Context, string, []model.Message) (string, error) {
		calls++
		if calls%3 == 0 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	}))

	for i := 0; i < 10; i++ {
		before := s.Store().Len()
		s.SetInput("question")
		require.True(t, s.Send(context.Background()))
		assert.Equal(t, before+2, s.Store().Len())
	}
}

func TestSession_BlankInputIsNoop(t *testing.T) {
	var calls int32
	s := newSession(assistantFunc(func(context.Context, string, []model.Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "x", nil
	}))

	for _, in := range []string{"", "   ", "\t\n"} {
		s.SetInput(in)
		assert.False(t, s.Send(context.Background()))
	}
	assert.Equal(t, 1, s.Store().Len())
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_SingleFlight(t *testing.T) {
	s := newSession(replyWith("x"))
	s.SetInput("first")

	ex, ok := s.Submit(context.Background())
	require.True(t, ok)
	assert.Equal(t, "first", ex.Message)
	assert.Empty(t, s.Input(), "buffer cleared on submit")
	assert.Equal(t, StateAwaitingReply, s.State())

	s.SetInput("second")
	_, ok = s.Submit(context.Background())
	assert.False(t, ok)
	assert.False(t, s.Send(context.Background()))
	assert.Equal(t, 2, s.Store().Len())
	assert.Equal(t, "second", s.Input(), "refused send keeps the buffer")

	s.Resolve(context.Background(), model.NewBotMessage("reply"))
	assert.Equal(t, StateIdle, s.State())

	_, ok = s.Submit(context.Background())
	assert.True(t, ok)
}

func TestSession_ConcurrentSendsIssueOneRequest(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	s := newSession(assistantFunc(func(context.Context, string, []model.Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "x", nil
	}))
	s.SetInput("hello")

	var wg sync.WaitGroup
	var sent int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Send(context.Background()) {
				atomic.AddInt32(&sent, 1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&sent))
	assert.Equal(t, 3, s.Store().Len())
}

func TestSession_HistoryIsBounded(t *testing.T) {
	var last []model.Message
	s := newSession(assistantFunc(func(_ context.Context, _ string, h []model.Message) (string, error) {
		last = h
		return "ok", nil
	}))

	for i := 0; i < 12; i++ {
		s.SetInput("q")
		s.Send(context.Background())
	}
	assert.Len(t, last, transcript.MaxStoredMessages)
	assert.Equal(t, model.SenderUser, last[len(last)-1].Sender)
}

func TestSession_ResolveWithoutPendingIsIgnored(t *testing.T) {
	s := newSession(replyWith("x"))
	s.Resolve(context.Background(), model.NewBotMessage("stray"))
	assert.Equal(t, 1, s.Store().Len())
}

func TestSession_Ask(t *testing.T) {
	s := newSession(replyWith("Rest and hydrate."))
	reply, ok := s.Ask(context.Background(), "I have a cold")
	require.True(t, ok)
	assert.Equal(t, "Rest and hydrate.", reply.Text)

	_, ok = s.Ask(context.Background(), " ")
	assert.False(t, ok)
}

func TestSession_Clear(t *testing.T) {
	s := newSession(replyWith("x"))
	s.SetInput("hello")
	s.Send(context.Background())

	require.True(t, s.Clear(context.Background()))
	assert.Equal(t, []model.Message{model.Greeting()}, s.Messages())

	s.SetInput("again")
	s.Submit(context.Background())
	assert.False(t, s.Clear(context.Background()), "clear refused while awaiting reply")
}

// =============================================================================
// SESSION: VOICE
// =============================================================================

func TestVoice_Unavailable(t *testing.T) {
	s := NewSession(transcript.New(nil), NewDispatcher(replyWith("x"), 0), false)
	assert.Equal(t, VoiceUnavailable, s.Voice())
	assert.False(t, s.VoiceAvailable())
	assert.False(t, s.BeginListening())
}

func TestVoice_FragmentAppendedNotSent(t *testing.T) {
	s := newSession(replyWith("x"))
	s.SetInput("I feel")

	require.True(t, s.BeginListening())
	assert.False(t, s.BeginListening(), "listening is exclusive")
	assert.Equal(t, VoiceListening, s.Voice())

	s.EndListening(" dizzy and tired ", nil)
	assert.Equal(t, "I feel dizzy and tired", s.Input())
	assert.Equal(t, VoiceReady, s.Voice())
	assert.Equal(t, 1, s.Store().Len(), "voice input is never auto-sent")

	// A second session appends again
	require.True(t, s.BeginListening())
	s.EndListening("today", nil)
	assert.Equal(t, "I feel dizzy and tired today", s.Input())
}

func TestVoice_ErrorDisablesForSession(t *testing.T) {
	s := newSession(replyWith("x"))
	s.SetInput("keep me")

	require.True(t, s.BeginListening())
	s.EndListening("ignored", errors.New("microphone busy"))

	assert.Equal(t, VoiceDisabled, s.Voice())
	assert.Equal(t, "keep me", s.Input())
	assert.False(t, s.BeginListening())
}

func TestVoice_RefusedWhileAwaitingReply(t *testing.T) {
	s := newSession(replyWith("x"))
	s.SetInput("hi")
	s.Submit(context.Background())

	assert.False(t, s.VoiceAvailable())
	assert.False(t, s.BeginListening())
}

func TestVoice_EndWithoutBeginIsIgnored(t *testing.T) {
	s := newSession(replyWith("x"))
	s.EndListening("stray", nil)
	assert.Empty(t, s.Input())
}

// =============================================================================
// END TO END WITH THE HTTP CLIENT
// =============================================================================

func TestSession_BackendTimeoutYieldsFallback(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := backend.NewClient(&backend.ClientConfig{BaseURL: srv.URL, ChatTimeout: 50 * time.Millisecond})
	s := NewSession(transcript.New(nil), NewDispatcher(client, 50*time.Millisecond), false)
	s.SetInput("hello")

	require.True(t, s.Send(context.Background()))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hello", msgs[1].Text)
	assert.True(t, msgs[2].IsError)
	assert.Equal(t, model.FallbackErrorText, msgs[2].Text)
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_BackendServerMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"The assistant is resting. Try again soon."}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := NewSession(transcript.New(nil), NewDispatcher(backend.NewClient(&backend.ClientConfig{BaseURL: srv.URL}), 0), false)
	reply, ok := s.Ask(context.Background(), "hello")
	require.True(t, ok)
	assert.True(t, reply.IsError)
	assert.True(t, strings.HasPrefix(reply.Text, "The assistant is resting"))
}
