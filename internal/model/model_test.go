// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// assertPlaceholderInvariant checks that at most one placeholder exists and,
// when present, that it is the last message.
func assertPlaceholderInvariant(t *testing.T, c *Conversation) {
	t.Helper()
	n := c.PlaceholderCount()
	if n > 1 {
		t.Fatalf("placeholder invariant violated: %d placeholders", n)
	}
	if n == 1 && !c.Last().IsPlaceholder() {
		t.Fatal("placeholder invariant violated: placeholder is not the last message")
	}
}

func TestBeginExchange(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("Hello")

	if c.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", c.Len())
	}
	if c.At(0).Role != RoleUser || c.At(0).Content != "Hello" {
		t.Errorf("unexpected user message: %+v", c.At(0))
	}
	if !c.Last().IsPlaceholder() || !c.Last().Streaming {
		t.Errorf("expected streaming placeholder, got %+v", c.Last())
	}
	assertPlaceholderInvariant(t, c)
}

func TestAppendToPending(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("Hi")

	c.SetPendingContent("Hi")
	if !c.AppendToPending("there") {
		t.Fatal("append to pending should succeed")
	}
	if got := c.Last().Content; got != "Hithere" {
		t.Errorf("expected 'Hithere', got %q", got)
	}
	assertPlaceholderInvariant(t, c)
}

func TestAppendToPendingDroppedWithoutTarget(t *testing.T) {
	c := NewConversation("sess_test")

	// Empty list: nothing to mutate.
	if c.AppendToPending("stale") {
		t.Error("append into empty conversation should be dropped")
	}

	// Settled reply: also nothing to mutate.
	c.BeginExchange("Hi")
	c.FinalizePending("Hi there!", Metrics{})
	if c.AppendToPending("stale") {
		t.Error("append after finalize should be dropped")
	}
	if got := c.Last().Content; got != "Hi there!" {
		t.Errorf("settled content mutated: %q", got)
	}
}

func TestFinalizeOverridesConcatenation(t *testing.T) {
	// Scenario: chunks concatenated to "Hithere", terminal event carries the
	// authoritative "Hi there!" plus metrics. The terminal event wins.
	c := NewConversation("sess_test")
	c.BeginExchange("Hello")
	c.SetPendingContent("Hi")
	c.AppendToPending("there")

	m := Metrics{Tokens: 3, TokensPerSec: 12.5, Duration: 0.8}
	if !c.FinalizePending("Hi there!", m) {
		t.Fatal("finalize should succeed")
	}

	last := c.Last()
	if last.Content != "Hi there!" {
		t.Errorf("final content = %q, want 'Hi there!'", last.Content)
	}
	if last.Streaming {
		t.Error("message should no longer be streaming")
	}
	if last.Metrics == nil || last.Metrics.Tokens != 3 {
		t.Errorf("metrics not attached: %+v", last.Metrics)
	}
	assertPlaceholderInvariant(t, c)
}

func TestFailPendingConvertsPlaceholder(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("Hello")

	c.FailPending("generation failed: model unavailable")
	last := c.Last()
	if last.Streaming || last.IsPlaceholder() {
		t.Errorf("placeholder should become a settled notice: %+v", last)
	}
	if !strings.Contains(last.Content, "generation failed") {
		t.Errorf("unexpected notice content %q", last.Content)
	}
	if c.Len() != 2 {
		t.Errorf("no extra message expected, got %d", c.Len())
	}
	assertPlaceholderInvariant(t, c)
}

func TestFailPendingAppendsStandaloneNotice(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("Hello")
	c.FinalizePending("done", Metrics{})

	c.FailPending("system error")
	if c.Len() != 3 {
		t.Fatalf("expected standalone notice appended, got %d messages", c.Len())
	}
	if c.Last().Role != RoleAssistant || c.Last().Content != "system error" {
		t.Errorf("unexpected notice: %+v", c.Last())
	}
}

func TestStopPendingKeepsStreamedText(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("Hello")
	c.SetPendingContent("partial answ")

	c.StopPending()
	if c.Last().Streaming {
		t.Error("stop should settle the message")
	}
	if c.Last().Content != "partial answ" {
		t.Errorf("streamed text should remain, got %q", c.Last().Content)
	}
}

func TestTruncateForRetry(t *testing.T) {
	// Scenario: retry reply at index 3 -> messages truncated to [0,3),
	// prompt of message 2 returned for re-submission.
	c := NewConversation("sess_test")
	c.BeginExchange("first question")
	c.FinalizePending("first answer", Metrics{})
	c.BeginExchange("second question")
	c.FinalizePending("second answer", Metrics{})

	prompt, ok := c.TruncateForRetry(3)
	if !ok {
		t.Fatal("retry truncation should succeed")
	}
	if prompt != "second question" {
		t.Errorf("expected re-submitted prompt 'second question', got %q", prompt)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 messages after truncation, got %d", c.Len())
	}
	if c.Last().Role != RoleUser {
		t.Errorf("last message should be the user prompt, got %v", c.Last().Role)
	}

	c.BeginRetry()
	if !c.Last().IsPlaceholder() {
		t.Error("retry should arm a fresh placeholder")
	}
	assertPlaceholderInvariant(t, c)
}

func TestTruncateForRetryRejectsBadIndex(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("q")
	c.FinalizePending("a", Metrics{})

	if _, ok := c.TruncateForRetry(0); ok {
		t.Error("index 0 has no preceding prompt")
	}
	if _, ok := c.TruncateForRetry(5); ok {
		t.Error("out-of-range index should fail")
	}
	// Index 2 is out of range, index 1 has a user message before it.
	if _, ok := c.TruncateForRetry(1); !ok {
		t.Error("index 1 should be retryable")
	}
}

func TestRemove(t *testing.T) {
	c := NewConversation("sess_test")
	c.BeginExchange("q")
	c.FinalizePending("a", Metrics{})

	if !c.Remove(0) {
		t.Fatal("remove should succeed")
	}
	if c.Len() != 1 || c.At(0).Role != RoleAssistant {
		t.Errorf("unexpected remaining messages: %d", c.Len())
	}
	if c.Remove(9) {
		t.Error("out-of-range remove should fail")
	}
}

func TestLoadedHistoryIsSettled(t *testing.T) {
	msgs := []*Message{
		NewUserMessage("old question"),
		{Role: RoleAssistant, Content: "old answer", Streaming: true},
	}
	c := NewConversationWithMessages("sess_42", msgs)
	if c.Pending() != nil {
		t.Error("loaded history must not contain a streaming message")
	}
}

func TestGetTitle(t *testing.T) {
	c := NewConversation("sess_test")
	if got := c.GetTitle(); got != "New Conversation" {
		t.Errorf("empty conversation title = %q", got)
	}

	c.BeginExchange("How do governors on diesel engines work?")
	if got := c.GetTitle(); !strings.HasPrefix(got, "How do governors") {
		t.Errorf("title should preview first user message, got %q", got)
	}

	c.SetTitle("Diesel governors")
	if got := c.GetTitle(); got != "Diesel governors" {
		t.Errorf("explicit title should win, got %q", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !r.Valid() {
			t.Errorf("%v should be valid", r)
		}
	}
	if Role("tool").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestMetricsFormat(t *testing.T) {
	m := Metrics{Tokens: 128, TokensPerSec: 51.25, Duration: 2.5}
	got := m.Format()
	if !strings.Contains(got, "128 tok") || !strings.Contains(got, "51.2 tok/s") {
		t.Errorf("unexpected metrics format %q", got)
	}
}
