// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands defines the slash commands of the line-mode chat.
//
// The registry names each command, its aliases and arguments. The parser
// splits a typed line into a command and its arguments, and the completer
// offers tab completions for names and enumerated argument values. Running a
// command is left to the caller, which switches on Command.Name.
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := commands.NewParser(reg).Parse("/export html")
//	if res.Command != nil {
//	    // res.Command.Name == "/export", res.Args == []string{"html"}
//	}
package commands
