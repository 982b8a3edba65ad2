// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/ui/styles"
	"github.com/jeranaias/neural-tui/internal/util"
)

// =============================================================================
// SESSION SIDEBAR
// =============================================================================

// Sidebar is the session list panel. It tracks a cursor independent of the
// active session, so the user can browse without switching.
type Sidebar struct {
	sessions []gateway.SessionInfo
	cursor   int

	// activeID marks the session currently on screen.
	activeID string

	// deleteID marks the session awaiting its delete confirmation.
	deleteID string

	width  int
	height int
}

// NewSidebar creates an empty sidebar.
func NewSidebar() Sidebar {
	return Sidebar{width: 28}
}

// SetSessions replaces the listing, keeping the cursor in range.
func (s *Sidebar) SetSessions(sessions []gateway.SessionInfo) {
	s.sessions = sessions
	if s.cursor >= len(sessions) {
		s.cursor = len(sessions) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Sessions returns the current listing.
func (s *Sidebar) Sessions() []gateway.SessionInfo {
	return s.sessions
}

// SetActive marks the on-screen session.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetDeletePending marks the session awaiting confirmation; empty clears.
func (s *Sidebar) SetDeletePending(id string) {
	s.deleteID = id
}

// SetSize updates the panel dimensions.
func (s *Sidebar) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	s.height = height
}

// Width returns the panel width.
func (s *Sidebar) Width() int {
	return s.width
}

// CursorUp moves the selection up.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection down.
func (s *Sidebar) CursorDown() {
	if s.cursor < len(s.sessions)-1 {
		s.cursor++
	}
}

// Selected returns the session under the cursor.
func (s *Sidebar) Selected() (gateway.SessionInfo, bool) {
	if len(s.sessions) == 0 {
		return gateway.SessionInfo{}, false
	}
	return s.sessions[s.cursor], true
}

// =============================================================================
// RENDERING
// =============================================================================

var (
	sidebarFrame = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(styles.Overlay).
			Padding(0, 1)

	sidebarTitleStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Bold(true)

	sidebarItemStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary)

	sidebarSelectedStyle = lipgloss.NewStyle().
				Foreground(styles.TextInverse).
				Background(styles.Purple)

	sidebarActiveStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)

	sidebarDeleteStyle = lipgloss.NewStyle().
				Foreground(styles.Rose).
				Bold(true)
)

// View renders the panel.
func (s Sidebar) View() string {
	inner := s.width - 4 // border + padding
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Sessions"))
	b.WriteString("\n")

	if len(s.sessions) == 0 {
		b.WriteString(sidebarItemStyle.Render("(none yet)"))
	}

	for i, sess := range s.sessions {
		title := sess.Title
		if title == "" {
			title = "New Chat"
		}

		marker := "  "
		if sess.ID == s.activeID {
			marker = "* "
		}
		line := util.TruncateWidth(marker+title, inner)

		switch {
		case sess.ID == s.deleteID:
			line = sidebarDeleteStyle.Render(util.TruncateWidth("x "+title+"? (again to delete)", inner))
		case i == s.cursor:
			line = sidebarSelectedStyle.Render(line)
		case sess.ID == s.activeID:
			line = sidebarActiveStyle.Render(line)
		default:
			line = sidebarItemStyle.Render(line)
		}

		b.WriteString("\n")
		b.WriteString(line)
	}

	frame := sidebarFrame.Width(s.width - 2)
	if s.height > 0 {
		frame = frame.Height(s.height - 2)
	}
	return frame.Render(b.String())
}
