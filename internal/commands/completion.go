// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns whole-line candidates for line, the shape line editors
// expect. Plain chat text has no completions.
func (c *Completer) Complete(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	parts := splitCommandLine(line)
	if len(parts) == 1 && !strings.HasSuffix(line, " ") {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if strings.HasSuffix(line, " ") {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	prefix := strings.Join(append([]string{cmd.Name}, parts[1:argIndex+1]...), " ") + " "
	var out []string
	for _, v := range cmd.Args[argIndex].Values {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(partial)) {
			out = append(out, prefix+v)
		}
	}
	return out
}

// completeCommands returns names and aliases starting with partial, primary
// names first.
func (c *Completer) completeCommands(partial string) []string {
	partial = strings.ToLower(partial)

	type candidate struct {
		value string
		score int
	}
	var found []candidate
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			found = append(found, candidate{cmd.Name, calculateScore(cmd.Name, partial)})
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				found = append(found, candidate{alias, calculateScore(alias, partial) - 10})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].value < found[j].value
	})

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.value
	}
	return out
}

// calculateScore ranks a prefix match; exact and shorter matches score higher.
func calculateScore(value, partial string) int {
	score := 100
	if value == partial {
		return score + 100
	}
	score += 50 + 20 - len(value)
	score -= len(value) / 2
	return score
}
