// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered message list of one backend session.
type Conversation struct {
	SessionID string     `json:"session_id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewConversation creates an empty conversation bound to a session id.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Messages:  make([]*Message, 0),
		UpdatedAt: time.Now(),
	}
}

// NewConversationWithMessages creates a conversation from a loaded history.
// Any stray streaming flags in the input are cleared: a loaded history is
// fully settled by definition.
func NewConversationWithMessages(sessionID string, messages []*Message) *Conversation {
	for _, m := range messages {
		m.Streaming = false
	}
	return &Conversation{
		SessionID: sessionID,
		Messages:  messages,
		UpdatedAt: time.Now(),
	}
}

// =============================================================================
// EXCHANGE LIFECYCLE
// =============================================================================

// BeginExchange appends the user prompt and the streaming placeholder that
// will receive the reply. The placeholder is always the last element, which
// keeps the at-most-one-placeholder invariant by construction.
func (c *Conversation) BeginExchange(prompt string) {
	c.Messages = append(c.Messages, NewUserMessage(prompt), NewPendingAssistantMessage())
	c.touch()
}

// Pending returns the in-progress assistant reply, or nil when no reply is
// streaming. Only the last message can ever be pending.
func (c *Conversation) Pending() *Message {
	last := c.Last()
	if last != nil && last.Streaming {
		return last
	}
	return nil
}

// SetPendingContent replaces the pending reply's content wholesale. Used when
// the thinking delay fires (placeholder -> held fragments) and when the
// authoritative final text arrives. Returns false if nothing is pending.
func (c *Conversation) SetPendingContent(content string) bool {
	p := c.Pending()
	if p == nil {
		return false
	}
	p.Content = content
	c.touch()
	return true
}

// AppendToPending concatenates a fragment to the pending reply in arrival
// order. Returns false (fragment dropped) if nothing is pending, which is
// exactly the post-reset stale-chunk case.
func (c *Conversation) AppendToPending(fragment string) bool {
	p := c.Pending()
	if p == nil {
		return false
	}
	p.Content += fragment
	c.touch()
	return true
}

// FinalizePending completes the streaming reply with the backend's
// authoritative final text and metrics. The final text wins over whatever
// was concatenated locally. Returns false if nothing is pending.
func (c *Conversation) FinalizePending(totalContent string, metrics Metrics) bool {
	p := c.Pending()
	if p == nil {
		return false
	}
	p.Content = totalContent
	if !metrics.IsZero() {
		m := metrics
		p.Metrics = &m
	}
	p.Streaming = false
	c.touch()
	return true
}

// FailPending converts the pending reply into a visible error notice, or
// appends a standalone notice when no reply is pending.
func (c *Conversation) FailPending(notice string) {
	if p := c.Pending(); p != nil {
		p.Content = notice
		p.Streaming = false
	} else {
		c.Messages = append(c.Messages, NewAssistantNotice(notice))
	}
	c.touch()
}

// StopPending ends streaming without mutating content: whatever was already
// streamed remains on screen.
func (c *Conversation) StopPending() {
	if p := c.Pending(); p != nil {
		p.Streaming = false
		c.touch()
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// At returns the message at index i, or nil when out of range.
func (c *Conversation) At(i int) *Message {
	if i < 0 || i >= len(c.Messages) {
		return nil
	}
	return c.Messages[i]
}

// Remove deletes the message at index i.
func (c *Conversation) Remove(i int) bool {
	if i < 0 || i >= len(c.Messages) {
		return false
	}
	c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
	c.touch()
	return true
}

// TruncateForRetry drops the reply at index i and everything after it, and
// returns the prompt that produced it (the message at i-1) for re-submission.
// The conversation then ends on the user prompt; the retried exchange appends
// a fresh placeholder via BeginRetry.
func (c *Conversation) TruncateForRetry(i int) (prompt string, ok bool) {
	if i <= 0 || i >= len(c.Messages) {
		return "", false
	}
	prev := c.Messages[i-1]
	if prev.Role != RoleUser {
		return "", false
	}
	c.Messages = c.Messages[:i]
	c.touch()
	return prev.Content, true
}

// BeginRetry appends only the streaming placeholder. Used after
// TruncateForRetry, where the user prompt is already the last message.
func (c *Conversation) BeginRetry() {
	c.Messages = append(c.Messages, NewPendingAssistantMessage())
	c.touch()
}

// PlaceholderCount returns the number of placeholder messages. The invariant
// is that this never exceeds one and, when one exists, it is the last
// element; tests assert it after every mutation.
func (c *Conversation) PlaceholderCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.IsPlaceholder() {
			n++
		}
	}
	return n
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// GetTitle returns the explicit title, or a preview of the first user
// message, or a default for empty conversations.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m.Preview(50)
		}
	}
	return "New Conversation"
}

// SetTitle sets the backend-assigned title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.touch()
}

func (c *Conversation) touch() {
	c.UpdatedAt = time.Now()
}
