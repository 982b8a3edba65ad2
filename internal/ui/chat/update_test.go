// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/neural-tui/internal/config"
	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/model"
	"github.com/jeranaias/neural-tui/internal/session"
	"github.com/jeranaias/neural-tui/internal/stream"
	"github.com/jeranaias/neural-tui/internal/ui/components"
)

// newTestModel builds a chat model with an unconnected gateway. Commands
// that would hit the network are returned but never executed.
func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Markdown = false // keep rendering deterministic
	m := New(gateway.NewClient(), nil, nil, cfg)
	m.resize(100, 40)
	return m
}

func event(kind gateway.EventKind, payload any) GatewayEventMsg {
	return GatewayEventMsg{Event: gateway.Event{Kind: kind, Payload: payload}}
}

func TestSubmitAppendsExchange(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("Hello")

	cmd := m.submit()
	if cmd == nil {
		t.Fatal("submit should produce commands")
	}

	conv := m.ctl.Conversation()
	if conv.Len() != 2 {
		t.Fatalf("len = %d, want user + placeholder", conv.Len())
	}
	if conv.At(0).Role != model.RoleUser || conv.At(0).Content != "Hello" {
		t.Errorf("first message = %+v", conv.At(0))
	}
	if !conv.At(1).IsPlaceholder() {
		t.Error("second message should be the pending placeholder")
	}
	if !m.asm.Streaming() {
		t.Error("assembler should be streaming")
	}
	if m.input.Value() != "" {
		t.Error("input should clear on submit")
	}
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")
	if cmd := m.submit(); cmd != nil {
		t.Error("whitespace-only input should not submit")
	}
	if m.ctl.Conversation().Len() != 0 {
		t.Error("conversation should stay empty")
	}
}

func TestSubmitRefusedWhileStreaming(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("first")
	m.submit()

	m.input.SetValue("second")
	m.submit()

	if m.ctl.Conversation().Len() != 2 {
		t.Error("second submit while streaming must be refused")
	}
}

func TestChunksHeldUntilReveal(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()

	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "Hel"}))
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "lo"}))

	pending := m.ctl.Conversation().Pending()
	if pending == nil || !pending.IsPlaceholder() {
		t.Fatal("placeholder must survive until the thinking delay elapses")
	}

	m.Update(stream.ThinkingRevealMsg{Epoch: m.asm.Epoch()})
	if got := m.ctl.Conversation().Pending().Content; got != "Hello" {
		t.Errorf("revealed content = %q, want accumulated fragments", got)
	}
}

func TestChatEndIsAuthoritative(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()

	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "Hithere"}))
	m.Update(stream.ThinkingRevealMsg{Epoch: m.asm.Epoch()})
	m.Update(event(gateway.EventChatEnd, &gateway.ChatEndPayload{
		TotalContent: "Hi there!",
		Metrics:      model.Metrics{Tokens: 3, TokensPerSec: 1.5, Duration: 2},
	}))

	last := m.ctl.Conversation().Last()
	if last.Content != "Hi there!" {
		t.Errorf("content = %q, want the authoritative total", last.Content)
	}
	if last.Streaming {
		t.Error("reply should be settled")
	}
	if last.Metrics == nil || last.Metrics.Tokens != 3 {
		t.Errorf("metrics = %+v", last.Metrics)
	}
	if m.asm.Streaming() {
		t.Error("assembler should be idle")
	}
}

func TestErrorConvertsPlaceholder(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()

	m.Update(event(gateway.EventError, &gateway.ErrorPayload{Message: "model exploded"}))

	last := m.ctl.Conversation().Last()
	if last.Content != "model exploded" {
		t.Errorf("content = %q", last.Content)
	}
	if last.Streaming {
		t.Error("notice should be settled")
	}
	if m.toasts.Len() == 0 {
		t.Error("an error toast should be visible")
	}
}

func TestStopBeforeRevealDropsPlaceholder(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()

	m.Update(event(gateway.EventGenerationStopped, &gateway.GenerationStoppedPayload{}))

	conv := m.ctl.Conversation()
	if conv.Len() != 1 {
		t.Errorf("len = %d; a never-revealed reply should vanish on stop", conv.Len())
	}
	if conv.PlaceholderCount() != 0 {
		t.Error("no placeholder should remain")
	}
}

func TestNewSessionInvalidatesStream(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "old"}))
	oldEpoch := m.asm.Epoch()

	settle := m.newSession()
	if settle == nil {
		t.Fatal("new session should arm the settle timer")
	}
	if !m.ctl.Conversation().IsEmpty() {
		t.Error("new session starts empty")
	}

	// Stream events queued before the swap land stale.
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "zombie"}))
	if !m.ctl.Conversation().IsEmpty() {
		t.Error("chunk during reset must be dropped")
	}

	m.Update(session.ResetSettledMsg{})
	m.Update(stream.ThinkingRevealMsg{Epoch: oldEpoch})
	if !m.ctl.Conversation().IsEmpty() {
		t.Error("stale reveal must be dropped")
	}
}

func TestSessionLoadedSwapsConversation(t *testing.T) {
	m := newTestModel(t)
	if !m.ctl.BeginLoad("sess_7") {
		t.Fatal("load should proceed")
	}

	m.Update(event(gateway.EventSessionLoaded, &gateway.SessionLoadedPayload{
		SessionID: "sess_7",
		Messages: []gateway.SessionMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	}))

	if m.ctl.SessionID() != "sess_7" {
		t.Errorf("session = %q", m.ctl.SessionID())
	}
	if m.ctl.Conversation().Len() != 2 {
		t.Errorf("len = %d", m.ctl.Conversation().Len())
	}

	// The swap is guarded like a hard reset: stream events queued behind
	// the load land stale until the settle timer fires.
	if !m.ctl.Resetting() {
		t.Fatal("load swap must raise the reset guard")
	}
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "stale"}))
	if m.ctl.Conversation().Len() != 2 {
		t.Error("chunk during load settle must be dropped")
	}
	m.Update(session.ResetSettledMsg{})
	if m.ctl.Resetting() {
		t.Error("settle should lower the guard")
	}
}

func TestSessionsListUpdatesSidebar(t *testing.T) {
	m := newTestModel(t)
	m.Update(event(gateway.EventSessionsList, &gateway.SessionsListPayload{
		Sessions: []gateway.SessionInfo{{ID: "sess_1", Title: "One"}},
	}))
	if len(m.sidebar.Sessions()) != 1 {
		t.Error("sidebar should pick up the listing")
	}
}

func TestSystemStatusDrivesStatusBar(t *testing.T) {
	m := newTestModel(t)
	m.Update(event(gateway.EventSystemStatus, &gateway.SystemStatusPayload{Status: gateway.StatusIdle}))
	if m.statusbar.Conn() != components.ConnIdle {
		t.Error("IDLE should read as connected")
	}
	m.Update(event(gateway.EventSystemStatus, &gateway.SystemStatusPayload{Status: "GENERATING"}))
	if m.statusbar.Conn() != components.ConnBusy {
		t.Error("non-idle status should read busy")
	}
}

func TestRetryRewindsAndResends(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "bad answer"}))
	m.Update(stream.ThinkingRevealMsg{Epoch: m.asm.Epoch()})
	m.Update(event(gateway.EventChatEnd, &gateway.ChatEndPayload{TotalContent: "bad answer"}))

	cmd := m.retryLastExchange()
	if cmd == nil {
		t.Fatal("retry should produce commands")
	}

	conv := m.ctl.Conversation()
	if conv.Len() != 2 {
		t.Fatalf("len = %d, want prompt + fresh placeholder", conv.Len())
	}
	if conv.At(0).Content != "hi" {
		t.Errorf("prompt = %q", conv.At(0).Content)
	}
	if !conv.At(1).IsPlaceholder() {
		t.Error("retry should append a fresh placeholder")
	}
}

func TestModelsDataSettlesSelection(t *testing.T) {
	m := newTestModel(t)
	m.Update(event(gateway.EventModelsData, &gateway.ModelsDataPayload{
		Providers: map[string][]string{"ollama": {"llama3", "mistral"}},
	}))
	if m.provider != "ollama" || m.modelName != "llama3" {
		t.Errorf("selection = %s/%s", m.provider, m.modelName)
	}

	// A provider with no models forces a fallback to one that has some.
	m2 := newTestModel(t)
	m2.provider = "lmstudio"
	m2.Update(event(gateway.EventModelsData, &gateway.ModelsDataPayload{
		Providers: map[string][]string{"lmstudio": {}, "ollama": {"llama3"}},
	}))
	if m2.provider != "ollama" {
		t.Errorf("provider = %q, want fallback to ollama", m2.provider)
	}
}

func TestDeleteLastExchange(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()
	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "yo"}))
	m.Update(stream.ThinkingRevealMsg{Epoch: m.asm.Epoch()})

	// Refused while streaming.
	m.deleteLastExchange()
	if m.ctl.Conversation().Len() != 2 {
		t.Fatal("delete must be refused mid-stream")
	}

	m.Update(event(gateway.EventChatEnd, &gateway.ChatEndPayload{TotalContent: "yo"}))
	m.deleteLastExchange()
	if !m.ctl.Conversation().IsEmpty() {
		t.Errorf("len = %d, want prompt and reply gone", m.ctl.Conversation().Len())
	}
}

func TestCycleModelAndProvider(t *testing.T) {
	m := newTestModel(t)
	m.Update(event(gateway.EventModelsData, &gateway.ModelsDataPayload{
		Providers: map[string][]string{
			"ollama":   {"llama3", "mistral"},
			"lmstudio": {"qwen"},
			"empty":    {},
		},
	}))

	m.cycleModel()
	if m.modelName != "mistral" {
		t.Errorf("model = %q, want mistral", m.modelName)
	}
	m.cycleModel()
	if m.modelName != "llama3" {
		t.Errorf("model = %q, want wraparound to llama3", m.modelName)
	}

	m.cycleProvider()
	if m.provider != "empty" && m.provider != "lmstudio" {
		t.Fatalf("provider = %q", m.provider)
	}
	if m.provider == "empty" {
		t.Error("providers with no models must be skipped")
	}
	if m.modelName != "qwen" {
		t.Errorf("model = %q, want first of new provider", m.modelName)
	}
}

func TestViewRendersWithoutPanic(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	m.submit()
	if out := m.View(); out == "" {
		t.Error("view should render")
	}

	m.Update(event(gateway.EventChatChunk, &gateway.ChatChunkPayload{Content: "Hello **world**"}))
	m.Update(stream.ThinkingRevealMsg{Epoch: m.asm.Epoch()})
	if out := m.View(); out == "" {
		t.Error("view should render during streaming")
	}
}

func TestSidebarDeleteTwoStep(t *testing.T) {
	m := newTestModel(t)
	m.Update(event(gateway.EventSessionsList, &gateway.SessionsListPayload{
		Sessions: []gateway.SessionInfo{{ID: "sess_1", Title: "One"}},
	}))
	m.showSidebar = true
	m.focusSidebar = true

	keyD := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}

	_, cmd := m.handleSidebarKey(keyD)
	if cmd != nil {
		t.Error("first press must not delete")
	}
	if id, ok := m.ctl.PendingDelete(); !ok || id != "sess_1" {
		t.Fatalf("pending = %q, %v", id, ok)
	}

	_, cmd = m.handleSidebarKey(keyD)
	if cmd == nil {
		t.Error("second press should send the deletion")
	}
	if _, ok := m.ctl.PendingDelete(); ok {
		t.Error("confirmation should disarm")
	}
}
