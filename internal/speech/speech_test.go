// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX echo binary")
	}
}

// =============================================================================
// DETECT
// =============================================================================

func TestDetect(t *testing.T) {
	assert.IsType(t, None{}, Detect(Options{}))
	assert.IsType(t, &CommandRecognizer{}, Detect(Options{Command: "echo hi"}))
	assert.IsType(t, &WebSocketRecognizer{}, Detect(Options{WSURL: "ws://x", Command: "echo hi"}))
}

func TestNone(t *testing.T) {
	var r Recognizer = None{}
	assert.False(t, r.Available())
	_, err := r.Recognize(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

// =============================================================================
// COMMAND RECOGNIZER
// =============================================================================

func TestCommandRecognizer(t *testing.T) {
	skipOnWindows(t)

	r := Detect(Options{Command: "echo   I have a fever  "})
	require.True(t, r.Available())

	text, err := r.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "I have a fever", text)
}

func TestCommandRecognizer_Missing(t *testing.T) {
	r := NewCommandRecognizer(Options{Command: "medai-no-such-listener --once"})
	assert.False(t, r.Available())
	_, err := r.Recognize(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCommandRecognizer_Failure(t *testing.T) {
	skipOnWindows(t)
	r := NewCommandRecognizer(Options{Command: "false", Timeout: time.Second})
	if !r.Available() {
		t.Skip("false not on PATH")
	}
	_, err := r.Recognize(context.Background())
	assert.Error(t, err)
}

// =============================================================================
// WEBSOCKET RECOGNIZER
// =============================================================================

// fakeService answers with the audio it received, or with an error frame.
func fakeService(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var start controlMessage
		if err := conn.ReadJSON(&start); err != nil || start.Type != "start" {
			return
		}
		if fail {
			conn.WriteJSON(serverMessage{Type: "error", Message: "unsupported language"})
			return
		}

		var audio strings.Builder
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.BinaryMessage {
				audio.Write(data)
				continue
			}
			var ctl controlMessage
			if json.Unmarshal(data, &ctl) == nil && ctl.Type == "end" {
				break
			}
		}
		conn.WriteJSON(serverMessage{Type: "partial", Text: "..."})
		conn.WriteJSON(serverMessage{Type: "final", Text: fmt.Sprintf(" %s (%s) ", strings.TrimSpace(audio.String()), start.Language)})
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketRecognizer(t *testing.T) {
	skipOnWindows(t)
	srv := fakeService(t, false)
	defer srv.Close()

	r := Detect(Options{WSURL: wsURL(srv), CaptureCommand: "echo chest pain", Timeout: 5 * time.Second})
	require.True(t, r.Available())

	text, err := r.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chest pain (en-US)", text)
}

func TestWebSocketRecognizer_ServerError(t *testing.T) {
	skipOnWindows(t)
	srv := fakeService(t, true)
	defer srv.Close()

	r := NewWebSocketRecognizer(Options{WSURL: wsURL(srv), CaptureCommand: "echo x", Timeout: 5 * time.Second})
	_, err := r.Recognize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestWebSocketRecognizer_Unreachable(t *testing.T) {
	skipOnWindows(t)
	srv := fakeService(t, false)
	url := wsURL(srv)
	srv.Close()

	r := NewWebSocketRecognizer(Options{WSURL: url, CaptureCommand: "echo x", Timeout: time.Second})
	_, err := r.Recognize(context.Background())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestWebSocketRecognizer_NoCapture(t *testing.T) {
	r := NewWebSocketRecognizer(Options{WSURL: "ws://127.0.0.1:1"})
	assert.False(t, r.Available())
}
