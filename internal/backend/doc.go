// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the medical assistance backend.
//
// All endpoints live under one configured origin:
//
//	POST /api/chat                {message, chatHistory} -> {reply}
//	GET  /api/first-aid           -> [guide]
//	GET  /api/nearby-hospitals    ?lat=&lng= -> {results}
//	GET  /api/sos/{userId}        -> profile
//	POST /api/sos                 profile
//	POST /api/sos/alert           {userId} -> {message}
//
// Every failure is a *ClientError carrying an ErrorType and, when the backend
// sent one, its "message" or "error" text. Each request is tagged with an
// X-Request-ID and paced by a token-bucket limiter.
package backend
