// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversational session: the input coordinator
// and the request dispatcher that sit on top of the transcript store.
//
// # State Machine
//
//	Idle --Submit--> AwaitingReply --Resolve--> Idle
//
// Submit is single-flight: a second send while a reply is awaited is a no-op,
// as is a blank buffer. Resolve runs for success and failure alike.
//
// # Dispatch
//
// Dispatcher.Dispatch never fails. Timeouts, connection errors, non-2xx
// responses and malformed bodies all become an error-flagged assistant
// message, using the server's message when one was sent.
//
// # Usage
//
//	sess := chat.NewSession(store, chat.NewDispatcher(client, 10*time.Second), recognizer.Available())
//	sess.SetInput("I twisted my ankle")
//	if ex, ok := sess.Submit(ctx); ok {
//	    sess.Resolve(ctx, sess.Dispatcher().Dispatch(ctx, ex))
//	}
package chat
