// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage caches the backend's session index locally.
//
// The backend remains the source of truth for session content; this cache
// only remembers the sidebar listing (ids and titles) so the UI can paint
// it immediately on startup, before the first sessions_list arrives.
package storage
