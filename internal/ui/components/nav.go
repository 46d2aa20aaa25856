// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// NAVIGATION TABS
// =============================================================================

// Nav renders the view tabs. Only views the current role may enter appear;
// denied views are absent, not greyed out.
type Nav struct {
	theme  *styles.Theme
	views  []access.View
	active access.View
}

// NewNav creates a navigation component.
func NewNav(theme *styles.Theme) *Nav {
	return &Nav{theme: theme}
}

// SetViews replaces the visible view list, typically after login.
func (n *Nav) SetViews(views []access.View) {
	n.views = views
	if len(views) > 0 {
		n.active = views[0]
	}
}

// Views returns the visible view list in display order.
func (n *Nav) Views() []access.View {
	return n.views
}

// Active returns the currently selected view.
func (n *Nav) Active() access.View {
	return n.active
}

// SetActive selects a view. Views not in the visible list are ignored.
func (n *Nav) SetActive(view access.View) bool {
	for _, v := range n.views {
		if v == view {
			n.active = view
			return true
		}
	}
	return false
}

// Next cycles to the following tab.
func (n *Nav) Next() {
	n.step(1)
}

// Prev cycles to the preceding tab.
func (n *Nav) Prev() {
	n.step(-1)
}

func (n *Nav) step(delta int) {
	if len(n.views) == 0 {
		return
	}
	idx := 0
	for i, v := range n.views {
		if v == n.active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(n.views)) % len(n.views)
	n.active = n.views[idx]
}

// View renders the tab row with number shortcuts.
func (n *Nav) View() string {
	if len(n.views) == 0 {
		return ""
	}
	tabs := make([]string, len(n.views))
	for i, v := range n.views {
		label := fmt.Sprintf("%d:%s", i+1, v)
		if v == n.active {
			tabs[i] = n.theme.NavItemActive.Render(label)
		} else {
			tabs[i] = n.theme.NavItem.Render(label)
		}
	}
	return strings.Join(tabs, " ")
}
