// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jeranaias/medai-tui/internal/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect or change the configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the effective configuration",
				Action: runConfigShow,
			},
			{
				Name:      "get",
				Usage:     "print one setting",
				ArgsUsage: "<section.key>",
				Action:    runConfigGet,
			},
			{
				Name:      "set",
				Usage:     "change one setting in the config file",
				ArgsUsage: "<section.key> <value>",
				Action:    runConfigSet,
			},
			{
				Name:  "path",
				Usage: "print the config file path",
				Action: func(c *cli.Context) error {
					path, _, err := editableConfigPath()
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, path)
					return nil
				},
			},
			{
				Name:  "env",
				Usage: "list the MEDAI_* environment variables",
				Action: func(c *cli.Context) error {
					return config.EnvUsage(c.App.Writer)
				},
			},
		},
		Action: runConfigShow,
	}
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fail(err.Error(), err)
	}
	fmt.Fprint(c.App.Writer, cfg.String())
	return nil
}

func runConfigGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError("usage: medai config get <section.key>\nkeys: " + strings.Join(config.GetAllKeys(), ", "))
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fail(err.Error(), err)
	}
	v, err := cfg.Get(c.Args().First())
	if err != nil {
		return usageError(err.Error())
	}
	if v == nil {
		fmt.Fprintln(c.App.Writer)
		return nil
	}
	fmt.Fprintln(c.App.Writer, v)
	return nil
}

// runConfigSet edits the file layer only, so environment overrides are not persisted.
// The file is written back in the format it was read from.
func runConfigSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return usageError("usage: medai config set <section.key> <value>")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	path, isYAML, err := editableConfigPath()
	if err != nil {
		return err
	}
	cfg := config.Default()
	switch {
	case isYAML:
		err = config.LoadYAML(cfg, path)
	case fileExists(path):
		err = config.LoadTOML(cfg, path)
	}
	if err != nil {
		return fail(err.Error(), err)
	}

	if err := cfg.Set(key, value); err != nil {
		return usageError(err.Error())
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fail(err.Error(), err)
	}
	if isYAML {
		err = config.SaveYAML(cfg, path)
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		return fail("Failed to save config: "+err.Error(), err)
	}
	fmt.Fprintf(c.App.Writer, "%s = %s\n", key, value)
	return nil
}

// editableConfigPath returns config.toml unless only config.yaml exists.
func editableConfigPath() (string, bool, error) {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", false, err
	}
	if fileExists(tomlPath) {
		return tomlPath, false, nil
	}
	if yamlPath, err := config.ConfigPathYAML(); err == nil && fileExists(yamlPath) {
		return yamlPath, true, nil
	}
	return tomlPath, false, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
