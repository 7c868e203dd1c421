// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/sos"
	uichat "github.com/jeranaias/medai-tui/internal/ui/chat"
	"github.com/jeranaias/medai-tui/internal/ui/components"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "chat with the health assistant (default)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "line", Aliases: []string{"l"}, Usage: "use line mode instead of the full-screen UI"},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	if c.Args().Present() {
		return usageError("unknown command " + c.Args().First() + ", see medai --help")
	}
	env, err := newEnv(c, true)
	if err != nil {
		return err
	}
	defer env.Close()

	rec := env.Recognizer()
	session := env.Session(rec)

	svc, err := env.SOS()
	if err != nil && !errors.Is(err, sos.ErrNotLoggedIn) {
		return err
	}

	interactive := c.App.Reader == os.Stdin && IsTTY() && IsStdoutTTY()
	if interactive && !c.Bool("line") {
		theme := styles.NewTheme(env.Config.UI.Theme)
		m := uichat.New(uichat.Options{
			Context:    c.Context,
			Session:    session,
			Recognizer: rec,
			SOS:        svc,
			Theme:      theme,
			Body:       components.NewMarkdownRenderer(components.GlamourStyle(theme.Name), env.Config.UI.Markdown),
			WordWrap:   env.Config.UI.WordWrap,
		})
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(c.Context)).Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}

	var lines LineReader
	if interactive {
		lines = newLinerReader()
	} else {
		lines = newScanReader(c.App.Reader, c.App.Writer)
	}
	defer lines.Close()

	repl := &REPL{
		Session:    session,
		Recognizer: rec,
		SOS:        svc,
		Lines:      lines,
		Out:        env.Out,
		Render:     env.Markdown,
	}
	return repl.Run(c.Context)
}
