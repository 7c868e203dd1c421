// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package firstaid searches and formats the backend's first-aid guides.
package firstaid

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
)

// User-facing messages.
const (
	MsgLoadFailed = "Failed to load first aid guides. Please try again later."
	MsgEmptyQuery = "Search the first aid guide by topic (e.g., CPR, Burns)."
)

// NoResults returns the message shown when query matches nothing.
func NoResults(query string) string {
	return fmt.Sprintf("No guides found for \"%s\". Try a different search term.", strings.TrimSpace(query))
}

// Source provides the full guide list. *backend.Client satisfies it.
type Source interface {
	FirstAidGuides(ctx context.Context) ([]model.Guide, error)
}

// Catalog fetches the guide list once and filters it locally.
type Catalog struct {
	src    Source
	guides []model.Guide
	loaded bool
}

// NewCatalog creates a catalog backed by src.
func NewCatalog(src Source) *Catalog {
	return &Catalog{src: src}
}

// Load fetches the guides on first call; later calls return the cached list.
func (c *Catalog) Load(ctx context.Context) ([]model.Guide, error) {
	if c.loaded {
		return c.guides, nil
	}
	guides, err := c.src.FirstAidGuides(ctx)
	if err != nil {
		logging.Get().Infow("load first aid guides fail", "err", err)
		return nil, err
	}
	c.guides = guides
	c.loaded = true
	return guides, nil
}

// Search loads the catalog and filters it by query.
func (c *Catalog) Search(ctx context.Context, query string) ([]model.Guide, error) {
	guides, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(guides, query), nil
}

// Filter keeps guides whose title contains the trimmed query, ignoring case.
// An empty query keeps everything. Order is preserved.
func Filter(guides []model.Guide, query string) []model.Guide {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	out := make([]model.Guide, 0, len(guides))
	for _, g := range guides {
		if strings.Contains(fold.String(g.Title), q) {
			out = append(out, g)
		}
	}
	return out
}

// Markdown formats one guide for rendering.
func Markdown(g model.Guide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", strings.TrimSpace(g.Title))
	if d := strings.TrimSpace(g.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	if g.ImageURL != "" {
		fmt.Fprintf(&b, "Image: <%s>\n\n", g.ImageURL)
	}
	if len(g.Steps) > 0 {
		b.WriteString("**Steps**\n\n")
		for i, step := range g.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(step))
		}
	}
	return b.String()
}

// Index formats the list of guide titles.
func Index(guides []model.Guide) string {
	var b strings.Builder
	for _, g := range guides {
		fmt.Fprintf(&b, "- %s\n", g.Title)
	}
	return b.String()
}
