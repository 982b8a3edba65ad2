// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream assembles an assistant reply from incremental fragments.
//
// The backend delivers one reply as an ordered sequence of chat_chunk events
// followed by a terminal chat_end (or error / generation_stopped). The
// Assembler applies them to the active conversation's pending message, with
// two twists the UI depends on:
//
//   - The first fragment is not shown immediately. A fixed thinking delay
//     gates visibility (not accumulation): fragments arriving during the
//     delay are held, and when the delay fires the placeholder is replaced
//     with everything held so far.
//   - All timer callbacks carry the epoch that armed them. A hard reset or a
//     superseding send bumps the epoch, so a stale thinking delay can never
//     mutate the next reply's placeholder.
package stream

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/neural-tui/internal/model"
)

// ThinkingDelay is the fixed pause before the first fragment becomes
// visible. A perceived-latency smoothing measure, not a network wait.
const ThinkingDelay = 600 * time.Millisecond

// =============================================================================
// ASSEMBLER STATE
// =============================================================================

type phase int

const (
	phaseIdle       phase = iota // No reply in flight
	phaseAwaitFirst              // Prompt sent, first fragment not yet arrived
	phaseHolding                 // Thinking delay running, fragments held
	phaseVisible                 // Fragments append directly to the message
)

// Assembler turns the per-reply event sequence into the growing assistant
// message of the bound conversation.
type Assembler struct {
	conv  *model.Conversation
	state phase
	epoch int
	held  strings.Builder
}

// New creates an assembler bound to a conversation.
func New(conv *model.Conversation) *Assembler {
	return &Assembler{conv: conv}
}

// Bind swaps the target conversation. Any in-flight reply state is
// discarded and outstanding timers are invalidated.
func (a *Assembler) Bind(conv *model.Conversation) {
	a.Cancel()
	a.conv = conv
}

// Cancel discards in-flight state and invalidates outstanding thinking
// delays. The conversation itself is not mutated.
func (a *Assembler) Cancel() {
	a.state = phaseIdle
	a.held.Reset()
	a.epoch++
}

// Epoch returns the current staleness token. Timer messages carrying an
// older value must be ignored.
func (a *Assembler) Epoch() int {
	return a.epoch
}

// Streaming reports whether a reply is currently in flight.
func (a *Assembler) Streaming() bool {
	return a.state != phaseIdle
}

// =============================================================================
// EXCHANGE LIFECYCLE
// =============================================================================

// Begin starts a new exchange: the user prompt and the placeholder are
// appended, and any previous exchange's pending timers are cancelled rather
// than merely ignored.
func (a *Assembler) Begin(prompt string) {
	a.Cancel()
	a.conv.BeginExchange(prompt)
	a.state = phaseAwaitFirst
}

// BeginRetry arms a fresh exchange after the conversation was truncated for
// retry (the prompt is already the last message).
func (a *Assembler) BeginRetry() {
	a.Cancel()
	a.conv.BeginRetry()
	a.state = phaseAwaitFirst
}

// ApplyChunk applies one fragment in arrival order. The returned command is
// non-nil exactly once per reply: it arms the thinking delay for the first
// fragment. Fragments with no valid target (stale events after a reset) are
// dropped.
func (a *Assembler) ApplyChunk(content string) tea.Cmd {
	switch a.state {
	case phaseAwaitFirst:
		if a.conv.Pending() == nil {
			// Placeholder vanished (swap raced the stream). Drop.
			a.Cancel()
			return nil
		}
		a.held.WriteString(content)
		a.state = phaseHolding
		return thinkingDelayCmd(a.epoch)

	case phaseHolding:
		// Delay gates visibility, not accumulation.
		a.held.WriteString(content)
		return nil

	case phaseVisible:
		if !a.conv.AppendToPending(content) {
			a.Cancel()
		}
		return nil

	default:
		// No exchange in flight: stale fragment, dropped.
		return nil
	}
}

// Reveal fires when the thinking delay elapses: the placeholder is replaced
// with everything held so far. Messages from a superseded exchange (epoch
// mismatch) or a settled reply are ignored.
func (a *Assembler) Reveal(epoch int) bool {
	if epoch != a.epoch || a.state != phaseHolding {
		return false
	}
	if !a.conv.SetPendingContent(a.held.String()) {
		a.Cancel()
		return false
	}
	a.held.Reset()
	a.state = phaseVisible
	return true
}

// ApplyEnd applies the terminal event. The authoritative total content
// replaces whatever was concatenated locally, and metrics are attached.
// A chat_end arriving while the thinking delay still runs settles the reply
// immediately; the late delay tick then finds no holding state and dies.
func (a *Assembler) ApplyEnd(totalContent string, metrics model.Metrics) bool {
	ok := a.conv.FinalizePending(totalContent, metrics)
	a.Cancel()
	return ok
}

// ApplyError converts the pending reply into the given error notice, or
// appends a standalone notice when nothing is pending.
func (a *Assembler) ApplyError(notice string) {
	a.conv.FailPending(notice)
	a.Cancel()
}

// ApplyStopped ends the exchange after a user interrupt. Streamed text
// remains as-is.
func (a *Assembler) ApplyStopped() {
	a.conv.StopPending()
	a.Cancel()
}

// VisibleTarget returns the text the typewriter should pace: the pending
// reply's content once revealed, or "" while the placeholder or no reply is
// showing. The placeholder itself never passes through the typewriter.
func (a *Assembler) VisibleTarget() string {
	if a.state != phaseVisible {
		return ""
	}
	p := a.conv.Pending()
	if p == nil {
		return ""
	}
	return p.Content
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ThinkingRevealMsg fires when the thinking delay elapses. Epoch identifies
// the exchange that armed it.
type ThinkingRevealMsg struct {
	Epoch int
}

func thinkingDelayCmd(epoch int) tea.Cmd {
	return tea.Tick(ThinkingDelay, func(time.Time) tea.Msg {
		return ThinkingRevealMsg{Epoch: epoch}
	})
}
