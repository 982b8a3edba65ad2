// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typewriter

import (
	"testing"
	"time"
)

// drain ticks the buffer until it reports done, guarding against runaway
// loops with a generous cap.
func drain(t *testing.T, b *Buffer) int {
	t.Helper()
	ticks := 0
	for {
		_, more := b.Tick()
		ticks++
		if !more {
			return ticks
		}
		if ticks > 100000 {
			t.Fatal("reveal did not terminate")
		}
	}
}

func TestRevealMonotonic(t *testing.T) {
	b := New()
	b.SetTarget("The quick brown fox jumps over the lazy dog")

	prev := 0
	for !b.Done() {
		b.Tick()
		if b.RevealedLen() < prev {
			t.Fatalf("revealed length decreased: %d -> %d", prev, b.RevealedLen())
		}
		prev = b.RevealedLen()
	}
}

func TestRevealTerminates(t *testing.T) {
	b := New()
	// 500 chars, no further growth: repeated ticking must reach the end.
	target := make([]byte, 500)
	for i := range target {
		target[i] = 'a'
	}
	b.SetTarget(string(target))

	drain(t, b)
	if !b.Done() {
		t.Error("expected fully revealed target")
	}
	if b.Revealed() != string(target) {
		t.Error("revealed text differs from target")
	}
}

func TestRevealNeverExceedsTarget(t *testing.T) {
	b := New()
	b.SetTarget("short")
	drain(t, b)
	if b.RevealedLen() > 5 {
		t.Errorf("revealed %d > target length 5", b.RevealedLen())
	}
}

func TestPaceTable(t *testing.T) {
	tests := []struct {
		backlog      int
		wantChars    int
		wantInterval time.Duration
	}{
		{200, 25, 1 * time.Millisecond},
		{151, 25, 1 * time.Millisecond},
		{150, 12, 1 * time.Millisecond},
		{81, 12, 1 * time.Millisecond},
		{80, 6, 1 * time.Millisecond},
		{31, 6, 1 * time.Millisecond},
		{30, 3, 5 * time.Millisecond},
		{11, 3, 5 * time.Millisecond},
		{10, 1, 15 * time.Millisecond},
		{1, 1, 15 * time.Millisecond},
	}

	for _, tt := range tests {
		chars, interval := pace(tt.backlog)
		if chars != tt.wantChars || interval != tt.wantInterval {
			t.Errorf("pace(%d) = (%d, %v), want (%d, %v)",
				tt.backlog, chars, interval, tt.wantChars, tt.wantInterval)
		}
	}
}

func TestShrinkResetsReveal(t *testing.T) {
	b := New()
	b.SetTarget("a long answer that was being revealed")
	for i := 0; i < 5; i++ {
		b.Tick()
	}
	if b.RevealedLen() == 0 {
		t.Fatal("expected some progress before the shrink")
	}

	// Retry replaces the target with unrelated shorter text.
	b.SetTarget("new")
	if b.RevealedLen() != 0 {
		t.Errorf("shrink should reset reveal to 0, got %d", b.RevealedLen())
	}
}

func TestGrowthKeepsRevealPosition(t *testing.T) {
	b := New()
	b.SetTarget("Hello")
	drain(t, b)

	b.SetTarget("Hello world")
	if b.RevealedLen() != 5 {
		t.Errorf("growth should keep position, got %d", b.RevealedLen())
	}
	if b.Done() {
		t.Error("buffer should have a backlog again")
	}
}

func TestDisabledSnapsToFull(t *testing.T) {
	b := NewDisabled()
	b.SetTarget("historical content")
	if !b.Done() {
		t.Error("disabled buffer must reveal instantly")
	}
	if b.Revealed() != "historical content" {
		t.Errorf("unexpected revealed text %q", b.Revealed())
	}
	if cmd := b.StartCmd(); cmd != nil {
		t.Error("no tick may be armed while disabled")
	}
}

func TestDisableMidReveal(t *testing.T) {
	b := New()
	b.SetTarget("some streaming content here")
	b.Tick()

	b.SetEnabled(false)
	if !b.Done() {
		t.Error("disabling must snap to the full target")
	}
}

func TestStartCmdArmsOnce(t *testing.T) {
	b := New()
	b.SetTarget("abc")

	if cmd := b.StartCmd(); cmd == nil {
		t.Fatal("expected a tick command for a fresh backlog")
	}
	// Chain is running: a second start must not arm a parallel chain.
	if cmd := b.StartCmd(); cmd != nil {
		t.Error("second StartCmd should be a no-op while ticking")
	}
}

func TestStartCmdRearmsAfterDrain(t *testing.T) {
	b := New()
	b.SetTarget("abc")
	b.StartCmd()
	drain(t, b)

	b.SetTarget("abcdef")
	if cmd := b.StartCmd(); cmd == nil {
		t.Error("expected re-arm after target growth past drained reveal")
	}
}

func TestResetClearsState(t *testing.T) {
	b := New()
	b.SetTarget("something")
	b.Tick()
	b.Reset()

	if b.Revealed() != "" || b.Backlog() != 0 {
		t.Error("reset should clear target and reveal")
	}
}

func TestMultibyteTarget(t *testing.T) {
	b := New()
	b.SetTarget("héllo wörld — 日本語")
	drain(t, b)
	if b.Revealed() != "héllo wörld — 日本語" {
		t.Errorf("multibyte reveal mismatch: %q", b.Revealed())
	}
}
