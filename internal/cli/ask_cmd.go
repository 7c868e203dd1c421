// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/speech"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "send one message and print the reply",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the reply message as JSON"},
		},
		Action: runAsk,
	}
}

func runAsk(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return usageError("usage: medai ask <question>")
	}

	env, err := newEnv(c, true)
	if err != nil {
		return err
	}
	defer env.Close()

	session := env.Session(speech.None{})
	reply, ok := session.Ask(c.Context, question)
	if !ok {
		return usageError("nothing to send")
	}

	if c.Bool("json") {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reply); err != nil {
			return err
		}
	} else if !reply.IsError {
		env.PrintMarkdown(reply.Text)
	}
	if reply.IsError {
		return cli.Exit(reply.Text, ExitNetworkError)
	}
	return nil
}
