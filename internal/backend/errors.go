// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeNotFound
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error

	// Status is the HTTP status code for ErrTypeStatus and ErrTypeNotFound.
	Status int

	// ServerMessage is the "message" field of the backend's error body, if any.
	ServerMessage string

	// ServerError is the "error" field of the backend's error body, if any.
	ServerError string

	// RequestID is the X-Request-ID sent with the failed request.
	RequestID string
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.ServerMessage != "" {
		msg += ": " + e.ServerMessage
	} else if e.ServerError != "" {
		msg += ": " + e.ServerError
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches on the error type so sentinels work with errors.Is.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// UserMessage returns the backend-supplied message, or "" when there is none.
func (e *ClientError) UserMessage() string {
	return e.ServerMessage
}

// Sentinel errors for easy checking with errors.Is.
var (
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: "backend unreachable"}
	ErrStatus          = &ClientError{Type: ErrTypeStatus, Message: "request failed"}
	ErrNotFound        = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// ServerMessage extracts the "message" field of a backend error body from err.
func ServerMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.ServerMessage
	}
	return ""
}

// ServerError extracts the "error" field of a backend error body from err.
func ServerError(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.ServerError
	}
	return ""
}
