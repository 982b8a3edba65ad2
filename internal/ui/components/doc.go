// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the neural TUI:
// the thinking spinner, session sidebar, status bar, toast notifications,
// and syntax-highlighted code blocks.
package components
