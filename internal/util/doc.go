// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the neural-tui client.
//
// The package is deliberately dependency-free: it is imported from render
// paths (message previews, status bar) where pulling in fmt-heavy helpers
// would be wasteful.
package util
