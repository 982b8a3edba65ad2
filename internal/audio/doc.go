// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio coordinates per-message speech playback.
//
// At most one message has audio activity at any time. The coordinator owns
// a three-state lifecycle (idle, loading, playing) and a monotonic request
// token that correlates synthesis results back to the request that asked
// for them, so a slow result for an abandoned request can never start
// playback.
package audio
