// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/firstaid"
)

func firstAidCommand() *cli.Command {
	return &cli.Command{
		Name:      "firstaid",
		Aliases:   []string{"first-aid"},
		Usage:     "search the first aid guides",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print matching guides as JSON"},
		},
		Action: runFirstAid,
	}
}

func runFirstAid(c *cli.Context) error {
	env, err := newEnv(c, false)
	if err != nil {
		return err
	}
	defer env.Close()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	guides, err := firstaid.NewCatalog(env.Client).Search(c.Context, query)
	if err != nil {
		return fail(firstaid.MsgLoadFailed, err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(guides)
	}

	switch {
	case query == "":
		env.Println(firstaid.MsgEmptyQuery)
		env.Println()
		env.PrintMarkdown(firstaid.Index(guides))
	case len(guides) == 0:
		env.Println(firstaid.NoResults(query))
	default:
		for _, g := range guides {
			env.PrintMarkdown(firstaid.Markdown(g))
		}
	}
	return nil
}
