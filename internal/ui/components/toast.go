// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toasts inspired by lazygit's popup system. Toasts appear in
// a corner and auto-dismiss, so the user keeps typing while errors show.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/neural-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
)

// StatusToastDuration is the auto-dismiss duration for status toasts.
const StatusToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer to read).
const ErrorToastDuration = 8 * time.Second

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// ToastExpiredMsg dismisses a toast by id.
type ToastExpiredMsg struct {
	ID int
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastStack holds the visible toasts, newest last.
type ToastStack struct {
	toasts []Toast
	nextID int
}

// PushError adds an error toast and returns its expiry command.
func (ts *ToastStack) PushError(message string) tea.Cmd {
	return ts.push(message, ToastKindError, ErrorToastDuration)
}

// PushStatus adds an informational toast and returns its expiry command.
func (ts *ToastStack) PushStatus(message string) tea.Cmd {
	return ts.push(message, ToastKindStatus, StatusToastDuration)
}

func (ts *ToastStack) push(message string, kind ToastKind, d time.Duration) tea.Cmd {
	ts.nextID++
	id := ts.nextID
	ts.toasts = append(ts.toasts, Toast{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  d,
	})
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes the toast named by msg.
func (ts *ToastStack) Expire(msg ToastExpiredMsg) {
	for i, toast := range ts.toasts {
		if toast.ID == msg.ID {
			ts.toasts = append(ts.toasts[:i], ts.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll clears every visible toast.
func (ts *ToastStack) DismissAll() {
	ts.toasts = nil
}

// Len returns the number of visible toasts.
func (ts *ToastStack) Len() int {
	return len(ts.toasts)
}

// =============================================================================
// RENDERING
// =============================================================================

var (
	toastErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Rose).
			Padding(0, 1)

	toastStatusStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Cyan).
			Padding(0, 1)
)

// View renders the stack, newest at the bottom. Empty when no toasts.
func (ts ToastStack) View(maxWidth int) string {
	if len(ts.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(ts.toasts))
	for _, toast := range ts.toasts {
		style := toastStatusStyle
		if toast.Kind == ToastKindError {
			style = toastErrorStyle
		}
		rendered = append(rendered, style.MaxWidth(maxWidth).Render(toast.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}
