// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/commands"
	"github.com/jeranaias/medai-tui/internal/config"
	"github.com/jeranaias/medai-tui/internal/export"
	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/speech"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one line of input. Prefill seeds the editable line.
type LineReader interface {
	ReadLine(prompt, prefill string) (string, error)
	Close() error
}

// linerReader provides history and line editing on a terminal.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(commands.NewCompleter(replCommands).Complete)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &linerReader{line: line, historyFile: filepath.Join(dir, "repl_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *linerReader) ReadLine(prompt, prefill string) (string, error) {
	var (
		input string
		err   error
	)
	if prefill != "" {
		input, err = r.line.PromptWithSuggestion(prompt, prefill, -1)
	} else {
		input, err = r.line.Prompt(prompt)
	}
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *linerReader) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

// scanReader reads plain lines from a pipe. Prefill is printed, not editable.
type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newScanReader(in io.Reader, out io.Writer) *scanReader {
	return &scanReader{sc: bufio.NewScanner(in), out: out}
}

func (r *scanReader) ReadLine(prompt, prefill string) (string, error) {
	fmt.Fprint(r.out, prompt+prefill)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return prefill + r.sc.Text(), nil
}

func (r *scanReader) Close() error { return nil }

// =============================================================================
// REPL
// =============================================================================

// replCommands are the slash commands of the line-mode chat.
var replCommands = commands.NewRegistry()

// REPL is the line-mode chat.
type REPL struct {
	Session    *chat.Session
	Recognizer speech.Recognizer
	SOS        *sos.Service
	Lines      LineReader
	Out        io.Writer
	Render     func(string) string
	// ExportDir is where /export writes; empty means the working directory.
	ExportDir  string
}

// Run loops until /quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if r.Render == nil {
		r.Render = func(s string) string { return s }
	}
	for _, m := range r.Session.Messages() {
		r.printMessage(m)
	}
	fmt.Fprintln(r.Out, MutedStyle.Render("Type /help for commands."))

	for {
		line, err := r.Lines.ReadLine(PromptStyle.Render("medai> "), r.Session.Input())
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.Out)
			return nil
		}
		if err != nil {
			return err
		}
		r.Session.SetInput(line)

		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "/") {
			r.Session.SetInput("")
		}
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "/") {
			if !r.command(ctx, text) {
				return nil
			}
			continue
		}

		ex, ok := r.Session.Submit(ctx)
		if !ok {
			continue
		}
		reply := r.Session.Dispatcher().Dispatch(ctx, ex)
		r.Session.Resolve(ctx, reply)
		r.printMessage(reply)
	}
}

// command runs a slash command and reports whether to keep going.
func (r *REPL) command(ctx context.Context, text string) bool {
	res := commands.NewParser(replCommands).Parse(text)
	if errors.Is(res.Error, commands.ErrUnknownCommand) {
		fmt.Fprintln(r.Out, ErrorStyle.Render("Unknown command "+res.CommandName+". Type /help."))
		return true
	}
	if res.Error != nil {
		fmt.Fprintln(r.Out, ErrorStyle.Render(res.Error.Error()))
		return true
	}

	switch res.Command.Name {
	case commands.Quit:
		return false

	case commands.Help:
		fmt.Fprintln(r.Out, replCommands.HelpText())

	case commands.History:
		for _, m := range r.Session.Messages() {
			r.printMessage(m)
		}

	case commands.Clear:
		if !r.ask("Clear chat history?") {
			return true
		}
		if r.Session.Clear(ctx) {
			fmt.Fprintln(r.Out, SuccessStyle.Render("Chat history cleared."))
		}

	case commands.Voice:
		r.listen(ctx)

	case commands.Export:
		format := "md"
		if len(res.Args) > 0 {
			format = res.Args[0]
		}
		r.export(format)

	case commands.SOS:
		if r.SOS == nil {
			fmt.Fprintln(r.Out, ErrorStyle.Render(sos.MsgLoginToAlert))
			return true
		}
		if !r.ask("Send SOS alert to your emergency contacts?") {
			return true
		}
		msg, err := r.SOS.Alert(ctx)
		if err != nil {
			fmt.Fprintln(r.Out, ErrorStyle.Render(msg))
		} else {
			fmt.Fprintln(r.Out, SuccessStyle.Render(msg))
		}
	}
	return true
}

func (r *REPL) listen(ctx context.Context) {
	if !r.Session.BeginListening() {
		switch r.Session.Voice() {
		case chat.VoiceDisabled:
			fmt.Fprintln(r.Out, ErrorStyle.Render("Voice input is turned off after an error. Restart to try again."))
		default:
			fmt.Fprintln(r.Out, ErrorStyle.Render("Voice input is not available on this system."))
		}
		return
	}
	fmt.Fprintln(r.Out, MutedStyle.Render("Listening..."))
	text, err := r.Recognizer.Recognize(ctx)
	r.Session.EndListening(text, err)
	if err != nil {
		logging.Get().Infow("repl voice fail", "err", err)
		fmt.Fprintln(r.Out, ErrorStyle.Render("Voice input failed and has been turned off."))
	}
}

func (r *REPL) export(format string) {
	opts := export.DefaultOptions()
	if r.ExportDir != "" {
		opts.OutputDir = r.ExportDir
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		fmt.Fprintln(r.Out, ErrorStyle.Render(err.Error()))
		return
	}
	path, err := export.ExportToFile(r.Session.Messages(), exp, opts)
	if err != nil {
		logging.Get().Infow("repl export fail", "format", format, "err", err)
		fmt.Fprintln(r.Out, ErrorStyle.Render("Export failed: "+err.Error()))
		return
	}
	fmt.Fprintln(r.Out, SuccessStyle.Render("Exported to "+path))
}

func (r *REPL) ask(question string) bool {
	answer, err := r.Lines.ReadLine(PromptStyle.Render(question+" [y/N] "), "")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (r *REPL) printMessage(m model.Message) {
	name := m.Sender.DisplayName()
	switch {
	case m.IsUser():
		fmt.Fprintln(r.Out, LabelStyle.Render(name+":")+" "+m.Text)
	case m.IsError:
		fmt.Fprintln(r.Out, LabelStyle.Render(name+":")+" "+ErrorStyle.Render(m.Text))
	default:
		fmt.Fprintln(r.Out, LabelStyle.Render(name+":"))
		fmt.Fprintln(r.Out, strings.TrimRight(r.Render(m.Text), "\n"))
	}
}
