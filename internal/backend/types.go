// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "github.com/jeranaias/medai-tui/internal/model"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message     string          `json:"message"`
	ChatHistory []model.Message `json:"chatHistory"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HospitalsResponse is the success body of GET /api/nearby-hospitals.
type HospitalsResponse struct {
	Results []model.Hospital `json:"results"`
}

// AlertRequest is the body of POST /api/sos/alert.
type AlertRequest struct {
	UserID string `json:"userId"`
}

// AlertResponse is the success body of POST /api/sos/alert.
type AlertResponse struct {
	Message string `json:"message"`
}

// errorBody covers both error shapes the backend uses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
