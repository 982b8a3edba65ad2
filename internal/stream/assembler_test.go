// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"testing"

	"github.com/jeranaias/neural-tui/internal/model"
)

func TestFirstChunkHeldUntilReveal(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("Hello")

	cmd := a.ApplyChunk("Hi")
	if cmd == nil {
		t.Fatal("first chunk must arm the thinking delay")
	}
	// Delay gates visibility: the placeholder is still showing.
	if !conv.Last().IsPlaceholder() {
		t.Errorf("content revealed before delay: %q", conv.Last().Content)
	}

	if !a.Reveal(a.Epoch()) {
		t.Fatal("reveal should succeed")
	}
	if got := conv.Last().Content; got != "Hi" {
		t.Errorf("expected 'Hi' after reveal, got %q", got)
	}
}

func TestChunksAccumulateDuringDelay(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("Hello")

	a.ApplyChunk("Hi ")
	if cmd := a.ApplyChunk("there"); cmd != nil {
		t.Error("only the first chunk arms the delay")
	}
	a.Reveal(a.Epoch())

	if got := conv.Last().Content; got != "Hi there" {
		t.Errorf("held chunks should concatenate, got %q", got)
	}
}

func TestScenarioFullExchange(t *testing.T) {
	// send "Hello" -> placeholder -> "Hi" -> reveal -> "there" ->
	// chat_end{"Hi there!", metrics} overrides "Hithere".
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("Hello")

	a.ApplyChunk("Hi")
	a.Reveal(a.Epoch())
	a.ApplyChunk("there")
	if got := conv.Last().Content; got != "Hithere" {
		t.Fatalf("expected locally concatenated 'Hithere', got %q", got)
	}

	m := model.Metrics{Tokens: 3, TokensPerSec: 12.5, Duration: 0.8}
	if !a.ApplyEnd("Hi there!", m) {
		t.Fatal("finalize should succeed")
	}
	last := conv.Last()
	if last.Content != "Hi there!" {
		t.Errorf("terminal event must win, got %q", last.Content)
	}
	if last.Metrics == nil || last.Metrics.TokensPerSec != 12.5 {
		t.Errorf("metrics missing: %+v", last.Metrics)
	}
	if a.Streaming() {
		t.Error("assembler should be idle after chat_end")
	}
}

func TestStaleRevealIgnored(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("first")
	a.ApplyChunk("old")
	oldEpoch := a.Epoch()

	// User sends again before the previous reply settles; the old delay must
	// be cancelled, not merely ignored.
	conv2 := model.NewConversation("sess_a")
	a.Bind(conv2)
	a.Begin("second")

	if a.Reveal(oldEpoch) {
		t.Error("stale thinking delay must not fire")
	}
	if conv2.Last().Content != model.Placeholder {
		t.Errorf("new placeholder mutated by stale delay: %q", conv2.Last().Content)
	}
}

func TestChunkAfterSwapDropped(t *testing.T) {
	// Scenario: a session load swaps the message list mid-stream; later
	// chunks find no placeholder and are dropped.
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("streaming question")
	a.ApplyChunk("part")
	a.Reveal(a.Epoch())

	loaded := model.NewConversationWithMessages("sess_42", []*model.Message{
		model.NewUserMessage("old question"),
		model.NewAssistantNotice("old answer"),
	})
	a.Bind(loaded)

	a.ApplyChunk("ial reply")
	if got := loaded.Last().Content; got != "old answer" {
		t.Errorf("stale chunk mutated loaded history: %q", got)
	}
	if got := conv.Last().Content; got != "part" {
		t.Errorf("abandoned conversation mutated after swap: %q", got)
	}
}

func TestEndDuringDelayFinalizesImmediately(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("quick one")

	epoch := a.Epoch()
	a.ApplyChunk("Yes")
	if !a.ApplyEnd("Yes.", model.Metrics{Tokens: 1}) {
		t.Fatal("finalize should succeed while delay is pending")
	}
	if got := conv.Last().Content; got != "Yes." {
		t.Errorf("expected final content, got %q", got)
	}
	// The late delay tick dies against the settled reply.
	if a.Reveal(epoch) {
		t.Error("reveal after finalize must be ignored")
	}
	if got := conv.Last().Content; got != "Yes." {
		t.Errorf("late reveal mutated settled reply: %q", got)
	}
}

func TestErrorConvertsPlaceholder(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("Hello")

	a.ApplyError("generation failed: provider offline")
	if conv.Last().IsPlaceholder() {
		t.Error("placeholder should become the error notice")
	}
	if a.Streaming() {
		t.Error("assembler should be idle after error")
	}
}

func TestErrorWithoutPendingAppendsNotice(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)

	a.ApplyError("system error")
	if conv.Len() != 1 || conv.Last().Role != model.RoleAssistant {
		t.Errorf("expected standalone notice, got %d messages", conv.Len())
	}
}

func TestStoppedKeepsStreamedText(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)
	a.Begin("Hello")
	a.ApplyChunk("partial")
	a.Reveal(a.Epoch())

	a.ApplyStopped()
	if got := conv.Last().Content; got != "partial" {
		t.Errorf("streamed text should remain after stop, got %q", got)
	}
	if conv.Last().Streaming {
		t.Error("reply should be settled after stop")
	}
}

func TestVisibleTarget(t *testing.T) {
	conv := model.NewConversation("sess_a")
	a := New(conv)

	if a.VisibleTarget() != "" {
		t.Error("idle assembler has no visible target")
	}

	a.Begin("Hello")
	a.ApplyChunk("Hi")
	if a.VisibleTarget() != "" {
		t.Error("placeholder must not reach the typewriter")
	}

	a.Reveal(a.Epoch())
	a.ApplyChunk(" there")
	if got := a.VisibleTarget(); got != "Hi there" {
		t.Errorf("visible target = %q", got)
	}
}

func TestRetryFlow(t *testing.T) {
	// Scenario: retry on reply index 3 truncates to [0,3) and re-sends the
	// prompt at index 2; a fresh placeholder is armed.
	conv := model.NewConversation("sess_a")
	a := New(conv)

	a.Begin("q1")
	a.ApplyChunk("a1")
	a.Reveal(a.Epoch())
	a.ApplyEnd("a1", model.Metrics{})
	a.Begin("q2")
	a.ApplyChunk("a2")
	a.Reveal(a.Epoch())
	a.ApplyEnd("a2-bad", model.Metrics{})

	prompt, ok := conv.TruncateForRetry(3)
	if !ok || prompt != "q2" {
		t.Fatalf("retry truncation: prompt=%q ok=%v", prompt, ok)
	}
	a.BeginRetry()

	if !conv.Last().IsPlaceholder() {
		t.Fatal("retry should arm a fresh placeholder")
	}
	a.ApplyChunk("a2-good")
	a.Reveal(a.Epoch())
	a.ApplyEnd("a2-good", model.Metrics{})
	if got := conv.Last().Content; got != "a2-good" {
		t.Errorf("retried reply content = %q", got)
	}
	if conv.PlaceholderCount() != 0 {
		t.Error("no placeholder should remain")
	}
}
