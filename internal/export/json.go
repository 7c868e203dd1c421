// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/medai-tui/internal/model"
)

// JSONExporter exports transcripts as JSON. Messages keep the persisted shape,
// so the output can be read back with transcript.Decode.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonDocument struct {
	Exported  time.Time       `json:"exported"`
	Generator string          `json:"generator"`
	Messages  []model.Message `json:"messages"`
}

// Export converts msgs to indented JSON. With IncludeMetadata unset the output
// is the bare message array.
func (e *JSONExporter) Export(msgs []model.Message) ([]byte, error) {
	if err := validate(msgs); err != nil {
		return nil, err
	}
	if !e.options.IncludeMetadata {
		return json.MarshalIndent(msgs, "", "  ")
	}
	return json.MarshalIndent(jsonDocument{
		Exported:  time.Now().UTC(),
		Generator: "medai",
		Messages:  msgs,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
