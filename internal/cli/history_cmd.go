// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/export"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/storage"
	"github.com/jeranaias/medai-tui/internal/transcript"
	"github.com/jeranaias/medai-tui/internal/ui/styles"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show, export or clear the saved chat history",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the saved messages",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the stored JSON"},
				},
				Action: runHistoryShow,
			},
			{
				Name:  "export",
				Usage: "write the saved messages to a Markdown, HTML or JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "md", Usage: "md, html or json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
					&cli.BoolFlag{Name: "open", Usage: "open the file when done"},
				},
				Action: runHistoryExport,
			},
			{
				Name:   "clear",
				Usage:  "delete the saved messages",
				Flags:  []cli.Flag{confirmFlag},
				Action: runHistoryClear,
			},
		},
		Action: runHistoryShow,
	}
}

func runHistoryShow(c *cli.Context) error {
	env, err := newEnv(c, true)
	if err != nil {
		return err
	}
	defer env.Close()

	saved, err := savedHistory(c, env)
	if err != nil || saved == nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(saved)
	}
	repl := &REPL{Out: env.Out, Render: env.Markdown}
	for _, m := range saved {
		repl.printMessage(m)
	}
	return nil
}

func runHistoryExport(c *cli.Context) error {
	opts := export.DefaultOptions()
	opts.OutputDir = c.String("output")
	opts.OpenAfterExport = c.Bool("open")
	exp, err := export.ForFormat(c.String("format"), opts)
	if err != nil {
		return usageError(err.Error())
	}

	env, err := newEnv(c, true)
	if err != nil {
		return err
	}
	defer env.Close()

	saved, err := savedHistory(c, env)
	if err != nil || saved == nil {
		return err
	}

	path, err := export.ExportToFile(saved, exp, opts)
	if err != nil && !errors.Is(err, export.ErrOpen) {
		return fail("Failed to export chat history: "+err.Error(), err)
	}
	if err != nil {
		printWarning(env.Err, err.Error())
	}
	env.Println(styles.RenderSuccess("Exported to " + path))
	return nil
}

// savedHistory reads the persisted snapshot. A missing or corrupt snapshot
// prints "No saved chat history." and returns nil messages without an error.
func savedHistory(c *cli.Context, env *Env) ([]model.Message, error) {
	saved, err := env.Transcript.Saved(c.Context)
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, transcript.ErrCorrupt):
		env.log.Infow("saved transcript unreadable", "err", err)
		fallthrough
	case errors.Is(err, storage.ErrNotFound):
		env.Println(styles.RenderInfo("No saved chat history."))
		return nil, nil
	}
	return nil, fail("Failed to read chat history. Please try again later.", err)
}

func runHistoryClear(c *cli.Context) error {
	env, err := newEnv(c, true)
	if err != nil {
		return err
	}
	defer env.Close()

	ok, err := RequireConfirmation(c, "Clear chat history?")
	if err != nil {
		return err
	}
	if !ok {
		env.Println(styles.RenderInfo("Cancelled."))
		return nil
	}
	env.Transcript.Clear(c.Context)
	env.Println(styles.RenderSuccess("Chat history cleared."))
	return nil
}
