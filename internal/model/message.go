// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/neural-tui/internal/util"
)

// Placeholder is the stand-in content of an assistant reply before its first
// fragment becomes visible.
const Placeholder = "..."

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the three known kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// =============================================================================
// METRICS TYPE
// =============================================================================

// Metrics holds the generation statistics the backend attaches to a
// completed assistant reply.
type Metrics struct {
	Tokens       int     `json:"tokens"`
	TokensPerSec float64 `json:"tps"`
	Duration     float64 `json:"duration"` // Seconds
}

// Format returns a short display string, e.g. "128 tok | 51.2 tok/s | 2.5s".
func (m Metrics) Format() string {
	return util.IntToString(m.Tokens) + " tok | " +
		util.FloatToString(m.TokensPerSec) + " tok/s | " +
		util.FloatToString(m.Duration) + "s"
}

// IsZero reports whether no metrics were recorded.
func (m Metrics) IsZero() bool {
	return m.Tokens == 0 && m.TokensPerSec == 0 && m.Duration == 0
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Metrics are present only on completed assistant messages.
	Metrics *Metrics `json:"metrics,omitempty"`

	// Streaming marks the single in-progress assistant reply. Not persisted;
	// a loaded history never contains a streaming message.
	Streaming bool `json:"-"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewPendingAssistantMessage creates the streaming placeholder that will
// receive the reply fragments.
func NewPendingAssistantMessage() *Message {
	return &Message{
		Role:      RoleAssistant,
		Content:   Placeholder,
		Timestamp: time.Now(),
		Streaming: true,
	}
}

// NewAssistantNotice creates a completed assistant message, used for
// standalone error notices.
func NewAssistantNotice(content string) *Message {
	return &Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsPlaceholder reports whether the message still shows the pending
// indicator.
func (m *Message) IsPlaceholder() bool {
	return m.Role == RoleAssistant && m.Content == Placeholder
}

// Preview returns a single-line, truncated preview of the message content.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.Content), maxRunes)
}
