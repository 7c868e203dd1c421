// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		want string
	}{
		{"/help", Help},
		{"/?", Help},
		{"/exit", Quit},
		{"/Q", Quit},
		{"/v", Voice},
		{"/export", Export},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := reg.Get(tt.name)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd.Name)
		})
	}
	assert.Nil(t, reg.Get("/model"))
}

func TestRegistry_HelpText(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Command{Name: "/debug", Hidden: true, Description: "internal"})

	help := reg.HelpText()
	assert.Contains(t, help, "/export [md|html|json]  save the conversation to a file")
	assert.Contains(t, help, "/sos")
	assert.NotContains(t, help, "/debug")
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(NewRegistry())

	tests := []struct {
		name      string
		input     string
		isCommand bool
		command   string
		args      []string
		wantErr   bool
	}{
		{"chat text", "my head hurts", false, "", nil, false},
		{"plain command", "  /history  ", true, History, []string{}, false},
		{"alias", "/exit", true, Quit, []string{}, false},
		{"enum arg", "/export HTML", true, Export, []string{"HTML"}, false},
		{"bad enum", "/export pdf", true, Export, []string{"pdf"}, true},
		{"too many args", "/clear all now", true, Clear, []string{"all", "now"}, true},
		{"unknown", "/model llama", true, "", []string{"llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse(tt.input)
			assert.Equal(t, tt.isCommand, res.IsCommand)
			if !tt.isCommand {
				return
			}
			if tt.command == "" {
				assert.Nil(t, res.Command)
				assert.ErrorIs(t, res.Error, ErrUnknownCommand)
			} else {
				require.NotNil(t, res.Command)
				assert.Equal(t, tt.command, res.Command.Name)
			}
			assert.Equal(t, tt.args, res.Args)
			assert.Equal(t, tt.wantErr, res.Error != nil)
		})
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`/a b c`, []string{"/a", "b", "c"}},
		{`/a "b c" d`, []string{"/a", "b c", "d"}},
		{`/a 'it\'s'`, []string{"/a", "it's"}},
		{`/a   `, []string{"/a"}},
		{`/a "ünï côdé"`, []string{"/a", "ünï côdé"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, splitCommandLine(tt.input))
		})
	}
}

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter(NewRegistry())

	tests := []struct {
		name string
		line string
		want []string
	}{
		{"chat text", "hello", nil},
		{"unique prefix", "/his", []string{History}},
		{"alias and name", "/e", []string{Export, "/exit"}},
		{"arg values", "/export ", []string{"/export md", "/export html", "/export json"}},
		{"arg prefix", "/export h", []string{"/export html"}},
		{"no more args", "/export html ", nil},
		{"unknown command", "/zzz ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Complete(tt.line))
		})
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("  /help"))
	assert.False(t, IsCommand("help /me"))
}
