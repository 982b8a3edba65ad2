// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main chat view for the neural TUI.
//
// The view is a standard Bubble Tea model. All state mutation happens in
// Update on a single goroutine; background work (websocket reads, audio
// playback) reaches it only as messages. Staleness across session swaps
// is enforced by the stream assembler's epoch and the audio coordinator's
// request token, never by comparing message content.
package chat
