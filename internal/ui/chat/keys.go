// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main chat view for the neural TUI.
//
// This file defines keyboard bindings for the chat interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit      key.Binding
	Stop        key.Binding
	NewSession  key.Binding
	Sidebar     key.Binding
	Retry       key.Binding
	DeleteLast  key.Binding
	PlayAudio   key.Binding
	NextModel   key.Binding
	NextProv    key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	SidebarUp   key.Binding
	SidebarDown key.Binding
	SidebarOpen key.Binding
	Delete      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "stop generation"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new session"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "toggle sessions"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "retry last reply"),
		),
		DeleteLast: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "delete last exchange"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "next model"),
		),
		NextProv: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "next provider"),
		),
		PlayAudio: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "play/stop last reply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q", "quit"),
		),
		SidebarUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous session"),
		),
		SidebarDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next session"),
		),
		SidebarOpen: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open session"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete session"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
	}
}
