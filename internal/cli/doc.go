// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the medai command line.
//
// Commands:
//
//	medai [chat]                         interactive chat (TUI on a terminal, line mode otherwise)
//	medai ask <question>                 one exchange, reply printed to stdout
//	medai firstaid [query]               search the first aid guides
//	medai hospitals [--lat --lng]        nearby hospitals
//	medai sos show|save|alert            emergency profile and SOS alert
//	medai history show|clear             saved chat transcript
//	medai config show|get|set|path|env   configuration
//	medai version
//
// Global flags override the configuration file and MEDAI_* environment variables.
package cli
