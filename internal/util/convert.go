// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the neural-tui client.
package util

import "strconv"

// IntToString converts an int to string.
func IntToString(i int) string {
	return strconv.Itoa(i)
}

// FloatToString converts a float64 to string with one decimal place.
// Metrics from the backend (tokens/s, duration) are displayed at this
// precision everywhere in the UI.
func FloatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
