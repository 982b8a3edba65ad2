// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typewriter paces how fast assembled reply text becomes visible.
//
// The network delivers text in bursts; rendering each burst at once makes
// replies appear in ugly jumps, while a fixed reveal rate falls behind fast
// streams. The Buffer keeps a revealed prefix of a growing target text and
// advances it on timer ticks, choosing the step size and tick interval from
// the current backlog so that perceived speed stays roughly constant and the
// reveal always catches up before the stream goes idle.
package typewriter

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// REVEAL RATE POLICY
// =============================================================================

// pace returns the characters to reveal per tick and the wait before the
// next tick, for a given backlog of assembled-but-hidden characters.
// Large backlogs reveal fast (the stream is outpacing the reader), small
// backlogs reveal at comfortable reading speed.
func pace(backlog int) (charsPerTick int, interval time.Duration) {
	switch {
	case backlog > 150:
		return 25, 1 * time.Millisecond
	case backlog > 80:
		return 12, 1 * time.Millisecond
	case backlog > 30:
		return 6, 1 * time.Millisecond
	case backlog > 10:
		return 3, 5 * time.Millisecond
	default:
		return 1, 15 * time.Millisecond
	}
}

// =============================================================================
// TYPEWRITER BUFFER
// =============================================================================

// Buffer tracks the revealed prefix of one message's target text.
//
// All mutation happens on the Bubble Tea update loop, so the Buffer carries
// no locking; correctness relies on the reset-on-shrink rule and on ticks
// stopping naturally once the backlog is empty.
type Buffer struct {
	target   []rune
	revealed int
	enabled  bool
	ticking  bool
}

// New creates an enabled, empty buffer.
func New() *Buffer {
	return &Buffer{enabled: true}
}

// NewDisabled creates a buffer that snaps every target to fully revealed.
// Used when rendering historical content that should appear instantly.
func NewDisabled() *Buffer {
	return &Buffer{enabled: false}
}

// SetEnabled toggles pacing. Disabling snaps the reveal to the full target.
func (b *Buffer) SetEnabled(enabled bool) {
	b.enabled = enabled
	if !enabled {
		b.revealed = len(b.target)
		b.ticking = false
	}
}

// Enabled reports whether pacing is active.
func (b *Buffer) Enabled() bool {
	return b.enabled
}

// SetTarget replaces the target text. A target shorter than what is already
// revealed is a new message (retry, session swap) and resets the reveal to
// zero; a growing target keeps the current reveal position.
func (b *Buffer) SetTarget(text string) {
	b.target = []rune(text)
	if !b.enabled {
		b.revealed = len(b.target)
		return
	}
	if len(b.target) < b.revealed {
		b.revealed = 0
	}
}

// Reset clears target and reveal state. Used on session swap.
func (b *Buffer) Reset() {
	b.target = nil
	b.revealed = 0
	b.ticking = false
}

// Revealed returns the currently visible prefix.
func (b *Buffer) Revealed() string {
	return string(b.target[:b.revealed])
}

// RevealedLen returns the revealed length in runes.
func (b *Buffer) RevealedLen() int {
	return b.revealed
}

// Backlog returns the number of assembled but not yet revealed characters.
func (b *Buffer) Backlog() int {
	return len(b.target) - b.revealed
}

// Done reports whether the full target is visible.
func (b *Buffer) Done() bool {
	return b.revealed >= len(b.target)
}

// Tick advances the reveal by one step and returns the wait before the next
// tick. The second return is false when the target is fully revealed and no
// further tick should be armed.
func (b *Buffer) Tick() (time.Duration, bool) {
	if !b.enabled || b.Done() {
		b.ticking = false
		return 0, false
	}

	chars, interval := pace(b.Backlog())
	b.revealed += chars
	if b.revealed > len(b.target) {
		b.revealed = len(b.target)
	}
	if b.Done() {
		b.ticking = false
		return 0, false
	}
	return interval, true
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg advances the typewriter reveal.
type TickMsg struct {
	Time time.Time
}

// TickCmd schedules the next reveal tick after the given interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// StartCmd arms the tick loop if the buffer has a backlog and is not already
// ticking. Safe to call on every target change; at most one tick chain runs.
func (b *Buffer) StartCmd() tea.Cmd {
	if !b.enabled || b.ticking || b.Done() {
		return nil
	}
	b.ticking = true
	_, interval := pace(b.Backlog())
	return TickCmd(interval)
}
