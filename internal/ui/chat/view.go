// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/neural-tui/internal/audio"
	"github.com/jeranaias/neural-tui/internal/model"
	"github.com/jeranaias/neural-tui/internal/ui/components"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight    = 1
	inputHeight     = 5 // textarea plus border
	statusBarHeight = 1
	sidebarWidth    = 28
)

// resize recomputes the layout after a terminal resize or sidebar toggle.
func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.ready = true

	mainWidth := width
	if m.showSidebar {
		mainWidth -= sidebarWidth
		m.sidebar.SetSize(sidebarWidth, height-headerHeight-statusBarHeight)
	}

	transcriptHeight := height - headerHeight - inputHeight - statusBarHeight
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = transcriptHeight

	m.input.SetWidth(mainWidth - 4)
	m.statusbar.SetWidth(width)

	m.refreshTranscript()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport. If the
// user was at the bottom, they stay pinned there as new text arrives.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()

	conv := m.ctl.Conversation()
	blocks := make([]string, 0, conv.Len())
	for i := 0; i < conv.Len(); i++ {
		blocks = append(blocks, m.renderMessage(conv.At(i), i == conv.Len()-1))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))

	if atBottom {
		m.viewport.GotoBottom()
	}
}

// renderMessage renders one transcript entry. The newest assistant reply
// shows the typewriter's revealed prefix instead of its full content while
// the reveal is still catching up.
func (m *Model) renderMessage(msg *model.Message, newest bool) string {
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	switch msg.Role {
	case model.RoleUser:
		label := m.theme.RoleLabel.Render("You")
		body := m.theme.UserBubble.MaxWidth(width).Render(msg.Content)
		return label + "\n" + body

	case model.RoleSystem:
		return m.theme.SystemNotice.MaxWidth(width).Render(msg.Content)

	default:
		label := m.theme.RoleLabel.Render("Assistant") + m.audioBadge(msg, newest)

		if msg.IsPlaceholder() {
			dots := m.spinner.View()
			if dots == "" {
				dots = m.theme.PendingDots.Render(model.Placeholder)
			}
			return label + "\n" + dots
		}

		content := msg.Content
		if newest && m.tw.RevealedLen() > 0 && !m.tw.Done() {
			content = m.tw.Revealed()
		} else if newest && msg.Streaming {
			content = m.tw.Revealed()
		}

		body := m.theme.AssistantBubble.MaxWidth(width).Render(m.renderContent(content, width))
		out := label + "\n" + body
		if msg.Metrics != nil && !msg.Metrics.IsZero() && !msg.Streaming {
			out += "\n" + m.theme.MetricsLine.Render(msg.Metrics.Format())
		}
		return out
	}
}

// audioBadge annotates the reply whose audio is loading or playing.
func (m *Model) audioBadge(msg *model.Message, newest bool) string {
	idx, ok := m.aud.ActiveIndex()
	if !ok {
		return ""
	}
	conv := m.ctl.Conversation()
	if idx >= conv.Len() || conv.At(idx) != msg {
		return ""
	}
	switch m.aud.Phase() {
	case audio.PhaseLoading:
		return "  " + m.theme.AudioLoading.Render("[~ audio]")
	case audio.PhasePlaying:
		return "  " + m.theme.AudioPlaying.Render("[> audio]")
	default:
		return ""
	}
}

// renderContent renders reply text: glamour when available, otherwise the
// code-block parser keeps fenced code readable.
func (m *Model) renderContent(content string, width int) string {
	if content == "" {
		return ""
	}
	if m.markdown != nil {
		if rendered, err := m.markdown.Render(content); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return components.ParseCodeBlocks(content, width)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full frame.
func (m *Model) View() string {
	if !m.ready {
		return "Starting neural..."
	}

	header := m.theme.Header.Width(m.width).Render(
		m.theme.HeaderBrand.Render("neural") + "  " +
			m.theme.HeaderTitle.Render(m.ctl.Conversation().GetTitle()),
	)

	main := m.viewport.View()
	if m.showSidebar {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	}

	input := m.theme.InputContainer.Width(m.viewport.Width - 2).Render(m.input.View())

	frame := lipgloss.JoinVertical(lipgloss.Left,
		header,
		main,
		input,
		m.statusbar.View(),
	)

	if m.toasts.Len() > 0 {
		frame += "\n" + m.toasts.View(m.width-4)
	}
	return frame
}
