// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to a file for sharing with a clinician
// or keeping a personal record.
//
// # Supported Formats
//
//   - Markdown: readable text with a YAML front matter header
//   - HTML: a standalone page with embedded CSS
//   - JSON: the transcript in the persisted message shape
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	path, err := export.ExportToFile(msgs, exp, opts)
package export
