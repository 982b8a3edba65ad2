// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway wraps the single logical event channel to the chat
// backend.
//
// The wire protocol is a named-event envelope over one websocket:
//
//	{"event": "chat_chunk", "data": {"content": "..."}}
//
// Event kinds form a closed enum with a strict payload schema per kind.
// Unknown kinds and malformed payloads are logged and dropped rather than
// silently interpreted. The gateway guarantees in-order delivery of decoded
// events on its channel; it does not implement reconnection or backoff.
package gateway
