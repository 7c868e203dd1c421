// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// confirmFlag is the shared --yes flag for destructive or outward actions.
var confirmFlag = &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"}

// RequireConfirmation asks a y/N question unless --yes was given.
// Without --yes a non-interactive stdin is an error rather than a silent no.
func RequireConfirmation(c *cli.Context, question string) (bool, error) {
	if c.Bool("yes") {
		return true, nil
	}
	if c.App.Reader == os.Stdin && !IsTTY() {
		return false, usageError("confirmation required: re-run with --yes")
	}

	fmt.Fprint(c.App.Writer, PromptStyle.Render(question+" [y/N] "))
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
