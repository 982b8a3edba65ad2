// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/neural-tui/internal/model"
	"github.com/jeranaias/neural-tui/internal/ui/styles"
	"github.com/jeranaias/neural-tui/internal/util"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnState is the backend link state shown in the status bar.
type ConnState int

const (
	// ConnOffline means the websocket is down.
	ConnOffline ConnState = iota
	// ConnIdle means connected and accepting prompts.
	ConnIdle
	// ConnBusy means the backend is generating.
	ConnBusy
)

func (c ConnState) String() string {
	switch c {
	case ConnIdle:
		return "ready"
	case ConnBusy:
		return "generating"
	default:
		return "offline"
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom line: connection state, provider/model, the
// last reply's metrics, and key hints.
type StatusBar struct {
	conn     ConnState
	provider string
	model    string
	metrics  *model.Metrics
	width    int
}

// NewStatusBar creates an offline status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetConn updates the connection state.
func (sb *StatusBar) SetConn(state ConnState) {
	sb.conn = state
}

// Conn returns the connection state.
func (sb *StatusBar) Conn() ConnState {
	return sb.conn
}

// SetSelection updates the provider/model display.
func (sb *StatusBar) SetSelection(provider, modelName string) {
	sb.provider = provider
	sb.model = modelName
}

// SetMetrics updates the last-reply metrics display; nil clears it.
func (sb *StatusBar) SetMetrics(m *model.Metrics) {
	sb.metrics = m
}

// SetWidth updates the bar width.
func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// =============================================================================
// RENDERING
// =============================================================================

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(styles.SurfaceDim).
			Foreground(styles.TextSecondary).
			Padding(0, 1)

	statusConnectedStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald).
				Bold(true)

	statusBusyStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)

	statusOfflineStyle = lipgloss.NewStyle().
				Foreground(styles.Rose).
				Bold(true)

	statusMetricsStyle = lipgloss.NewStyle().
				Foreground(styles.TextMuted)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)
)

// View renders the bar.
func (sb StatusBar) View() string {
	var state string
	switch sb.conn {
	case ConnIdle:
		state = statusConnectedStyle.Render("● " + sb.conn.String())
	case ConnBusy:
		state = statusBusyStyle.Render("● " + sb.conn.String())
	default:
		state = statusOfflineStyle.Render("● " + sb.conn.String())
	}

	parts := []string{state}

	if sb.provider != "" || sb.model != "" {
		sel := sb.provider
		if sb.model != "" {
			sel += "/" + sb.model
		}
		parts = append(parts, sel)
	}

	if sb.metrics != nil && !sb.metrics.IsZero() {
		parts = append(parts, statusMetricsStyle.Render(sb.metrics.Format()))
	}

	parts = append(parts, statusKeyStyle.Render("^N")+" new  "+
		statusKeyStyle.Render("^S")+" stop  "+
		statusKeyStyle.Render("^B")+" sessions")

	line := strings.Join(parts, "  |  ")
	if sb.width > 0 {
		line = util.TruncateWidth(line, sb.width-2)
		return statusBarStyle.Width(sb.width).Render(line)
	}
	return statusBarStyle.Render(line)
}
