// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/medai-tui/internal/logging"
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

// Control messages are JSON text frames; audio travels as binary frames.
//
//	client -> {"type":"start","language":"en-US","format":"pcm_s16le","rate":16000}
//	client -> binary audio ...
//	client -> {"type":"end"}
//	server -> {"type":"partial","text":"..."}   (ignored)
//	server -> {"type":"final","text":"..."}
//	server -> {"type":"error","message":"..."}

type controlMessage struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Format   string `json:"format,omitempty"`
	Rate     int    `json:"rate,omitempty"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

const (
	audioFormat    = "pcm_s16le"
	audioRate      = 16000
	audioChunkSize = 3200 // 100ms of 16kHz mono s16le
)

// =============================================================================
// RECOGNIZER
// =============================================================================

// WebSocketRecognizer streams captured audio to a recognition service.
type WebSocketRecognizer struct {
	opts    Options
	capture []string
	dialer  *websocket.Dialer
}

// NewWebSocketRecognizer creates a recognizer for opts.WSURL that records with opts.CaptureCommand.
func NewWebSocketRecognizer(opts Options) *WebSocketRecognizer {
	return &WebSocketRecognizer{
		opts:    opts,
		capture: strings.Fields(opts.CaptureCommand),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Available reports whether the capture program is on PATH.
func (r *WebSocketRecognizer) Available() bool {
	if r.opts.WSURL == "" || len(r.capture) == 0 {
		return false
	}
	_, err := exec.LookPath(r.capture[0])
	return err == nil
}

// Recognize records one utterance, streams it, and returns the final transcript.
func (r *WebSocketRecognizer) Recognize(ctx context.Context) (string, error) {
	if !r.Available() {
		return "", ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	conn, _, err := r.dialer.DialContext(ctx, r.opts.WSURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect to speech service: %w", err)
	}
	defer conn.Close()

	// Unblock reads when the context ends
	go func() {
		<-ctx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	start := controlMessage{Type: "start", Language: r.opts.Language, Format: audioFormat, Rate: audioRate}
	if err := conn.WriteJSON(start); err != nil {
		return "", fmt.Errorf("failed to start recognition: %w", err)
	}

	resultCh := make(chan string, 1)
	recvErrCh := make(chan error, 1)
	go func() {
		text, err := receiveFinal(conn)
		if err != nil {
			recvErrCh <- err
			return
		}
		resultCh <- text
	}()

	sendErrCh := make(chan error, 1)
	go func() {
		sendErrCh <- r.streamAudio(ctx, conn)
	}()

	// A send failure usually means the service already answered and hung up,
	// so keep reading until the receiver reports.
	var sendErr error
	for {
		select {
		case text := <-resultCh:
			return text, nil
		case err := <-recvErrCh:
			var se *ServiceError
			switch {
			case errors.As(err, &se):
				return "", err
			case sendErr != nil:
				return "", sendErr
			case ctx.Err() != nil:
				return "", fmt.Errorf("speech recognition timed out: %w", ctx.Err())
			}
			return "", err
		case err := <-sendErrCh:
			sendErr = err
			sendErrCh = nil
		case <-ctx.Done():
			return "", fmt.Errorf("speech recognition timed out: %w", ctx.Err())
		}
	}
}

// ServiceError is an error frame sent by the recognition service.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "speech service error: " + e.Message
}

// streamAudio runs the capture program and forwards its stdout as binary frames,
// then sends the end marker. Only this goroutine writes after the start frame.
func (r *WebSocketRecognizer) streamAudio(ctx context.Context, conn *websocket.Conn) error {
	cmd := exec.CommandContext(ctx, r.capture[0], r.capture[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	buf := make([]byte, audioChunkSize)
	var sent int
	for {
		n, rerr := stdout.Read(buf)
		if n > 0 {
			if err := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); err != nil {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				return fmt.Errorf("failed to send audio: %w", err)
			}
			sent += n
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = cmd.Wait()
			return fmt.Errorf("audio capture read failed: %w", rerr)
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("audio capture failed: %w", err)
	}
	logging.Get().Debugw("audio streamed", "bytes", sent)

	return conn.WriteJSON(controlMessage{Type: "end"})
}

func receiveFinal(conn *websocket.Conn) (string, error) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return "", errors.New("speech service closed without a result")
			}
			return "", fmt.Errorf("speech service read failed: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return "", fmt.Errorf("speech service sent invalid frame: %w", err)
		}
		switch msg.Type {
		case "final":
			return strings.TrimSpace(msg.Text), nil
		case "error":
			if msg.Message == "" {
				msg.Message = "unknown error"
			}
			return "", &ServiceError{Message: msg.Message}
		}
	}
}
