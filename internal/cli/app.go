// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

// Version information, set at build time.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:                 "medai",
		Usage:                "health assistant, first aid, hospitals and SOS from the terminal",
		Version:              Version,
		HideVersion:          true,
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (TOML or YAML)"},
			&cli.StringFlag{Name: "base-url", Usage: "backend origin, e.g. http://localhost:5000"},
			&cli.StringFlag{Name: "storage", Usage: "chat history backend: file, sqlite or redis"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "user id issued by the identity provider"},
			&cli.StringFlag{Name: "theme", Usage: "auto, dark or light"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "no-markdown", Usage: "print replies as plain text"},
		},
		Action: runChat,
		Commands: []*cli.Command{
			chatCommand(),
			askCommand(),
			firstAidCommand(),
			hospitalsCommand(),
			sosCommand(),
			historyCommand(),
			configCommand(),
			versionCommand(),
		},
		// Exit codes are handled by Run.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// Run executes the app and returns the process exit code.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	app := NewApp()
	app.Reader = in
	app.Writer = out
	app.ErrWriter = errOut

	err := app.RunContext(ctx, args)
	if err == nil {
		return ExitSuccess
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		if msg := ec.Error(); msg != "" {
			fmt.Fprintln(errOut, styles.RenderError(msg))
		}
		return ec.ExitCode()
	}
	fmt.Fprintln(errOut, styles.RenderError("Error: "+err.Error()))
	return ExitCodeFor(err)
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "medai %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
