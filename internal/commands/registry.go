// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
)

// Command names.
const (
	Help    = "/help"
	Quit    = "/quit"
	History = "/history"
	Clear   = "/clear"
	Voice   = "/voice"
	SOS     = "/sos"
	Export  = "/export"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is one slash command.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/exit")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax; empty means Name alone
	Usage string

	// Args defines the accepted arguments
	Args []ArgDef

	// Hidden commands don't appear in help
	Hidden bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name     string
	Required bool
	// Values lists the accepted values; empty means free text
	Values []string
}

// Accepts reports whether v is a valid value for the argument.
func (a ArgDef) Accepts(v string) bool {
	if len(a.Values) == 0 {
		return true
	}
	for _, allowed := range a.Values {
		if strings.EqualFold(allowed, v) {
			return true
		}
	}
	return false
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command, replacing any command with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, ignoring case.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// HelpText lists the visible commands with their descriptions.
func (r *Registry) HelpText() string {
	var rows [][2]string
	width := 0
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		if len(usage) > width {
			width = len(usage)
		}
		rows = append(rows, [2]string{usage, cmd.Description})
	}

	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, row[0], row[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        Help,
		Aliases:     []string{"/h", "/?"},
		Description: "show this help",
	})
	r.Register(&Command{
		Name:        Quit,
		Aliases:     []string{"/exit", "/q"},
		Description: "leave",
	})
	r.Register(&Command{
		Name:        History,
		Description: "show the conversation",
	})
	r.Register(&Command{
		Name:        Clear,
		Description: "clear the chat history",
	})
	r.Register(&Command{
		Name:        Voice,
		Aliases:     []string{"/v"},
		Description: "dictate into the input line",
	})
	r.Register(&Command{
		Name:        SOS,
		Description: "send an SOS alert to your emergency contacts",
	})
	r.Register(&Command{
		Name:        Export,
		Description: "save the conversation to a file",
		Usage:       "/export [md|html|json]",
		Args: []ArgDef{
			{Name: "format", Values: []string{"md", "html", "json"}},
		},
	})
}
