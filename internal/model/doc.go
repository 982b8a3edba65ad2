// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation owns an ordered message list for one backend session. Only
// the last message may be an in-progress assistant reply; every mutation of
// that reply goes through methods that first validate the last message is
// still the expected streaming target. Events that arrive after the message
// list has been swapped out (session load, hard reset) therefore find no
// target and are dropped by the caller.
package model
