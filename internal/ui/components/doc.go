// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the qvault TUI.
//
// Components are stateless renderers or small Bubble Tea models composed by
// the views: header, navigation tabs, status bar, error banner, result box,
// syntax-highlighted detail panes, and the telemetry charts.
package components
