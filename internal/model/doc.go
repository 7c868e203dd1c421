// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and backend records.
//
// # Key Types
//
//   - Message: Single transcript entry (text, sender, error flag, optional timestamp)
//   - Sender: Message origin enumeration (user, bot)
//   - Guide: First-aid topic with numbered steps
//   - Hospital: Nearby-search result with rating, opening hours and location
//   - SOSProfile: Emergency information and contacts for a user
//
// # Usage
//
// Build transcript entries:
//
//	msgs := []model.Message{model.Greeting(), model.NewUserMessage("I burned my hand")}
//	recent := model.Tail(msgs, 15)
//
// Failed exchanges become assistant messages flagged as errors:
//
//	msg := model.NewErrorMessage("") // uses FallbackErrorText
package model
