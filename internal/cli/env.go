// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/jeranaias/medai-tui/internal/backend"
	"github.com/jeranaias/medai-tui/internal/chat"
	"github.com/jeranaias/medai-tui/internal/config"
	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/sos"
	"github.com/jeranaias/medai-tui/internal/speech"
	"github.com/jeranaias/medai-tui/internal/storage"
	"github.com/jeranaias/medai-tui/internal/transcript"
	"github.com/jeranaias/medai-tui/internal/ui/components"
)

// Env holds the services a command runs against.
type Env struct {
	Config     *config.Config
	Client     *backend.Client
	KV         storage.KV
	Transcript *transcript.Store

	In  io.Reader
	Out io.Writer
	Err io.Writer

	log *zap.SugaredLogger
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromPath(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		loaded, err := config.Load()
		if loaded == nil {
			return nil, err
		}
		if err != nil {
			printWarning(c.App.ErrWriter, err.Error()+" (using defaults)")
		}
		cfg = loaded
	}

	overrides := []struct{ flag, key string }{
		{"base-url", "backend.base_url"},
		{"storage", "storage.backend"},
		{"user", "identity.user_id"},
		{"theme", "ui.theme"},
		{"log-level", "log.level"},
	}
	for _, o := range overrides {
		if !c.IsSet(o.flag) {
			continue
		}
		if err := cfg.Set(o.key, c.String(o.flag)); err != nil {
			return nil, err
		}
	}
	if c.Bool("no-markdown") {
		cfg.UI.Markdown = false
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEnv loads config, starts logging and builds the backend client.
// withStore also opens the transcript storage.
func newEnv(c *cli.Context, withStore bool) (*Env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fail(err.Error(), err)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if dir, err := config.ConfigDir(); err == nil {
			logFile = filepath.Join(dir, "medai.log")
		}
	}
	log, err := logging.Init(logging.Options{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		printWarning(c.App.ErrWriter, "logging disabled: "+err.Error())
		log = logging.Get()
	}

	env := &Env{
		Config: cfg,
		Client: backend.NewClient(&backend.ClientConfig{
			BaseURL:           cfg.Backend.BaseURL,
			ChatTimeout:       cfg.Backend.ChatTimeout(),
			RequestTimeout:    cfg.Backend.RequestTimeout(),
			RequestsPerSecond: cfg.Backend.RequestsPerSecond,
			UserAgent:         "medai/" + Version,
		}),
		In:  c.App.Reader,
		Out: c.App.Writer,
		Err: c.App.ErrWriter,
		log: log,
	}

	if withStore {
		kv, err := storage.Open(c.Context, storage.Options{
			Backend:    cfg.Storage.Backend,
			Dir:        cfg.DataDir(),
			SQLitePath: cfg.Storage.SQLitePath,
			RedisURL:   cfg.Storage.RedisURL,
		})
		if err != nil {
			log.Warnw("open storage fail", "backend", cfg.Storage.Backend, "err", err)
			return nil, fail("Failed to open chat history storage: "+err.Error(), err)
		}
		env.KV = kv
		env.Transcript = transcript.New(kv)
		env.Transcript.Load(c.Context)
	}
	log.Debugw("env ready", "backend", cfg.Backend.BaseURL, "storage", cfg.Storage.Backend)
	return env, nil
}

// Close releases storage and flushes the log.
func (e *Env) Close() {
	if e.KV != nil {
		if err := e.KV.Close(); err != nil {
			e.log.Infow("close storage fail", "err", err)
		}
	}
	_ = e.log.Sync()
}

// Recognizer returns the configured speech recognizer.
func (e *Env) Recognizer() speech.Recognizer {
	s := e.Config.Speech
	return speech.Detect(speech.Options{
		Command:        s.Command,
		WSURL:          s.WSURL,
		CaptureCommand: s.CaptureCommand,
		Language:       s.Language,
		Timeout:        s.Timeout(),
	})
}

// Session builds a chat session over the transcript.
func (e *Env) Session(rec speech.Recognizer) *chat.Session {
	d := chat.NewDispatcher(e.Client, e.Config.Backend.ChatTimeout())
	return chat.NewSession(e.Transcript, d, rec != nil && rec.Available())
}

// SOS returns the SOS service, or sos.ErrNotLoggedIn.
func (e *Env) SOS() (*sos.Service, error) {
	return sos.New(e.Client, e.Config.Identity.UserID)
}

// Width is the output wrap width.
func (e *Env) Width() int {
	if w := e.Config.UI.WordWrap; w > 0 {
		return w
	}
	return GetTerminalWidth()
}

// Markdown renders md for the terminal. Piped output and disabled markdown get
// the source text unchanged.
func (e *Env) Markdown(md string) string {
	if !e.Config.UI.Markdown || !IsStdoutTTY() {
		return md
	}
	r := components.NewMarkdownRenderer(components.GlamourStyle(e.Config.UI.Theme), true)
	out, err := r.Render(md, e.Width())
	if err != nil {
		e.log.Infow("render markdown fail", "err", err)
		return md
	}
	return out
}

// Println writes a line to the command's stdout.
func (e *Env) Println(a ...any) {
	fmt.Fprintln(e.Out, a...)
}

// PrintMarkdown renders md and writes it with a trailing newline.
func (e *Env) PrintMarkdown(md string) {
	fmt.Fprintln(e.Out, strings.TrimRight(e.Markdown(md), "\n"))
}
