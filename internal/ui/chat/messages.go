// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main chat view for the neural TUI.
//
// This file defines the Bubble Tea message types the chat view consumes,
// beyond the ones owned by the stream, typewriter, audio, and session
// packages.
package chat

import (
	"github.com/jeranaias/neural-tui/internal/config"
	"github.com/jeranaias/neural-tui/internal/gateway"
)

// =============================================================================
// GATEWAY MESSAGES
// =============================================================================

// GatewayEventMsg wraps one decoded backend event. The pump goroutine in
// main forwards every event through the program as one of these, which
// keeps arrival order intact.
type GatewayEventMsg struct {
	Event gateway.Event
}

// GatewayClosedMsg signals that the backend connection dropped.
type GatewayClosedMsg struct{}

// SendFailedMsg reports a failed outbound send.
type SendFailedMsg struct {
	Err error
}

// ConfigReloadedMsg carries a hot-reloaded configuration from the file
// watcher in main.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
