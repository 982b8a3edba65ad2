// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active conversation's lifecycle: creating fresh
// sessions, swapping in loaded history, and the two-step delete flow.
//
// The controller runs entirely on the update loop, so it carries no locks.
// Staleness across swaps is handled upstream (stream epochs, audio tokens);
// the controller's job is to make each swap atomic from the UI's point of
// view and to briefly gate input while a hard reset settles.
package session
