// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/hospitals"
)

func hospitalsCommand() *cli.Command {
	return &cli.Command{
		Name:  "hospitals",
		Usage: "list hospitals near you",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat", Usage: "latitude"},
			&cli.Float64Flag{Name: "lng", Aliases: []string{"lon"}, Usage: "longitude"},
			&cli.BoolFlag{Name: "nearest", Usage: "sort by distance"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.BoolFlag{Name: "table", Usage: "print one row per hospital"},
		},
		Action: runHospitals,
	}
}

func floatFlag(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func runHospitals(c *cli.Context) error {
	env, err := newEnv(c, false)
	if err != nil {
		return err
	}
	defer env.Close()

	loc := env.Config.Location
	at, err := hospitals.ResolveLocation(floatFlag(c, "lat"), floatFlag(c, "lng"), loc.Latitude, loc.Longitude)
	if err != nil {
		env.log.Infow("resolve location fail", "err", err)
		return fail(hospitals.MsgNoLocation, err)
	}

	results, err := hospitals.Find(c.Context, env.Client, at, c.Bool("nearest"))
	if err != nil {
		return fail(hospitals.ErrorText(err), err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		env.Println(hospitals.MsgNoResults)
		return nil
	}
	if c.Bool("table") {
		fmt.Fprint(env.Out, hospitals.Table(results))
		return nil
	}
	for _, r := range results {
		env.PrintMarkdown(hospitals.Markdown(r))
	}
	return nil
}
