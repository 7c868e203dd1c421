// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/backend"
	"github.com/jeranaias/medai-tui/internal/config"
	"github.com/jeranaias/medai-tui/internal/hospitals"
	"github.com/jeranaias/medai-tui/internal/sos"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// ExitCodeFor maps an error to a process exit code.
func ExitCodeFor(err error) int {
	var ec cli.ExitCoder
	var verrs config.ValidateErrors
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ec):
		return ec.ExitCode()
	case errors.Is(err, backend.ErrTimeout):
		return ExitTimeoutError
	case errors.Is(err, backend.ErrNotFound):
		return ExitNotFoundError
	case errors.Is(err, backend.ErrConnection),
		errors.Is(err, backend.ErrStatus),
		errors.Is(err, backend.ErrInvalidResponse):
		return ExitNetworkError
	case errors.Is(err, sos.ErrNotLoggedIn):
		return ExitAuthError
	case errors.Is(err, hospitals.ErrNoLocation),
		errors.Is(err, sos.ErrInvalidProfile):
		return ExitUsageError
	case errors.As(err, &verrs):
		return ExitConfigError
	}
	return ExitGeneralError
}

// fail pairs a user-facing message with the exit code for cause.
func fail(message string, cause error) error {
	code := ExitCodeFor(cause)
	if code == ExitSuccess {
		code = ExitGeneralError
	}
	return cli.Exit(message, code)
}

// usageError reports bad arguments.
func usageError(message string) error {
	return cli.Exit(message, ExitUsageError)
}
