// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/model"
)

func TestSidebarCursor(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions([]gateway.SessionInfo{
		{ID: "sess_1", Title: "First"},
		{ID: "sess_2", Title: "Second"},
	})

	sel, ok := sb.Selected()
	if !ok || sel.ID != "sess_1" {
		t.Fatalf("selected = %+v, %v", sel, ok)
	}

	sb.CursorDown()
	sel, _ = sb.Selected()
	if sel.ID != "sess_2" {
		t.Errorf("after down, selected = %q", sel.ID)
	}

	sb.CursorDown() // clamp at end
	sel, _ = sb.Selected()
	if sel.ID != "sess_2" {
		t.Errorf("cursor should clamp, selected = %q", sel.ID)
	}

	sb.CursorUp()
	sb.CursorUp() // clamp at start
	sel, _ = sb.Selected()
	if sel.ID != "sess_1" {
		t.Errorf("cursor should clamp at start, selected = %q", sel.ID)
	}
}

func TestSidebarCursorSurvivesShrink(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions([]gateway.SessionInfo{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	})
	sb.CursorDown()
	sb.CursorDown()

	sb.SetSessions([]gateway.SessionInfo{{ID: "a"}})
	sel, ok := sb.Selected()
	if !ok || sel.ID != "a" {
		t.Errorf("selected = %+v, %v; cursor must clamp into range", sel, ok)
	}
}

func TestSidebarViewMarksStates(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions([]gateway.SessionInfo{
		{ID: "sess_1", Title: "Alpha"},
		{ID: "sess_2", Title: ""},
	})
	sb.SetActive("sess_1")

	out := sb.View()
	if !strings.Contains(out, "Alpha") {
		t.Error("view should contain session titles")
	}
	if !strings.Contains(out, "New Chat") {
		t.Error("untitled sessions render as New Chat")
	}

	sb.SetDeletePending("sess_1")
	out = sb.View()
	if !strings.Contains(out, "again to delete") {
		t.Error("delete-pending session should show the confirmation hint")
	}
}

func TestStatusBarView(t *testing.T) {
	bar := NewStatusBar()
	if !strings.Contains(bar.View(), "offline") {
		t.Error("new status bar starts offline")
	}

	bar.SetConn(ConnIdle)
	bar.SetSelection("ollama", "llama3")
	bar.SetMetrics(&model.Metrics{Tokens: 42, TokensPerSec: 12.5, Duration: 3.4})

	out := bar.View()
	for _, want := range []string{"ready", "ollama/llama3", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q in %q", want, out)
		}
	}

	bar.SetConn(ConnBusy)
	if !strings.Contains(bar.View(), "generating") {
		t.Error("busy state should read generating")
	}
}

func TestToastStackLifecycle(t *testing.T) {
	var ts ToastStack

	cmd := ts.PushError("something broke")
	if cmd == nil {
		t.Fatal("push should arm an expiry")
	}
	ts.PushStatus("copied")
	if ts.Len() != 2 {
		t.Fatalf("len = %d, want 2", ts.Len())
	}

	out := ts.View(60)
	if !strings.Contains(out, "something broke") || !strings.Contains(out, "copied") {
		t.Errorf("view missing toasts: %q", out)
	}

	// Expire the first toast only.
	ts.Expire(ToastExpiredMsg{ID: 1})
	if ts.Len() != 1 {
		t.Errorf("len after expire = %d, want 1", ts.Len())
	}
	ts.Expire(ToastExpiredMsg{ID: 99}) // unknown id is a no-op
	if ts.Len() != 1 {
		t.Errorf("unknown id should not remove anything")
	}

	ts.DismissAll()
	if ts.Len() != 0 || ts.View(60) != "" {
		t.Error("dismiss all should clear the stack")
	}
}

func TestParseCodeBlocks(t *testing.T) {
	text := "before\n```go\nfunc main() {}\n```\nafter"
	out := ParseCodeBlocks(text, 80)
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Error("prose around the fence must survive")
	}
	if strings.Contains(out, "```") {
		t.Error("fence markers should be consumed")
	}
	if !strings.Contains(out, "main") {
		t.Error("code content should be present")
	}
}

func TestParseCodeBlocksUnclosedFence(t *testing.T) {
	out := ParseCodeBlocks("```python\nprint(1)", 80)
	if !strings.Contains(out, "print") {
		t.Error("streaming text with an open fence still renders the code")
	}
}

func TestThinkingSpinner(t *testing.T) {
	s := NewThinkingSpinner()
	if s.Active() {
		t.Error("spinner starts inactive")
	}
	if s.View() != "" {
		t.Error("inactive spinner renders nothing")
	}

	if cmd := s.Start(); cmd == nil {
		t.Error("start should return a tick command")
	}
	if !s.Active() {
		t.Error("spinner should be active after start")
	}
	if s.View() == "" {
		t.Error("active spinner renders a frame")
	}

	s.Stop()
	if s.Active() {
		t.Error("spinner should stop")
	}
}
