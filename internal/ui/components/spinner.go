// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/neural-tui/internal/ui/styles"
)

// =============================================================================
// THINKING SPINNER
// =============================================================================

// Spinner animates the reply-pending indicator. It wraps the bubbles
// spinner with ASCII-safe frames so it degrades cleanly on dumb terminals.
type Spinner struct {
	spinner  spinner.Model
	isActive bool
}

// NewThinkingSpinner creates the spinner shown while a reply is pending.
func NewThinkingSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
		FPS:    time.Second / 6,
	}
	return Spinner{spinner: s}
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// Active reports whether the spinner is animating.
func (s *Spinner) Active() bool {
	return s.isActive
}

// Update advances the animation. Ticks are swallowed while inactive so a
// stopped spinner stops scheduling wakeups.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

var pendingStyle = lipgloss.NewStyle().
	Foreground(styles.TextMuted).
	Italic(true)

// View renders the current frame.
func (s Spinner) View() string {
	if !s.isActive {
		return ""
	}
	return pendingStyle.Render(s.spinner.View())
}
