// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/monitor"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(true)
}

func TestNavCycling(t *testing.T) {
	nav := NewNav(testTheme())
	nav.SetViews([]access.View{access.ViewOverview, access.ViewLedger})

	if nav.Active() != access.ViewOverview {
		t.Errorf("initial active = %v", nav.Active())
	}
	nav.Next()
	if nav.Active() != access.ViewLedger {
		t.Errorf("after Next: %v", nav.Active())
	}
	nav.Next()
	if nav.Active() != access.ViewOverview {
		t.Errorf("Next should wrap: %v", nav.Active())
	}
	nav.Prev()
	if nav.Active() != access.ViewLedger {
		t.Errorf("Prev should wrap: %v", nav.Active())
	}
}

func TestNavSetActiveRejectsHiddenView(t *testing.T) {
	nav := NewNav(testTheme())
	nav.SetViews([]access.View{access.ViewOverview, access.ViewLedger})

	if nav.SetActive(access.ViewDecrypt) {
		t.Error("SetActive accepted a view outside the visible list")
	}
	if nav.Active() != access.ViewOverview {
		t.Errorf("active changed: %v", nav.Active())
	}
	if !nav.SetActive(access.ViewLedger) {
		t.Error("SetActive rejected a visible view")
	}
}

func TestNavViewOmitsHiddenTabs(t *testing.T) {
	nav := NewNav(testTheme())
	nav.SetViews([]access.View{access.ViewOverview, access.ViewEncrypt})

	out := nav.View()
	if !strings.Contains(out, access.ViewOverview.String()) {
		t.Error("overview tab missing")
	}
	if strings.Contains(out, access.ViewDecrypt.String()) {
		t.Error("hidden view rendered")
	}
}

func TestStatusString(t *testing.T) {
	if StatusReady.String() != "Ready" {
		t.Error(StatusReady.String())
	}
	if StatusSubmitting.String() != "Working..." {
		t.Error(StatusSubmitting.String())
	}
}

func TestStatusBarView(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.SetWidth(80)
	sb.SetStatus(StatusReady)
	out := sb.View([]Shortcut{{Key: "tab", Desc: "next view"}})
	if !strings.Contains(out, "Ready") {
		t.Error("status missing from bar")
	}
	if !strings.Contains(out, "next view") {
		t.Error("shortcut missing from bar")
	}
}

func TestErrorBannerEmpty(t *testing.T) {
	if ErrorBanner(testTheme(), "") != "" {
		t.Error("empty message should render nothing")
	}
	if out := ErrorBanner(testTheme(), "boom"); !strings.Contains(out, "boom") {
		t.Error("message missing from banner")
	}
}

func TestResultBoxSelectionAndElision(t *testing.T) {
	rb := NewResultBox(testTheme())
	rb.SetWidth(100)
	rb.SetFields([]ResultField{
		{Label: "Kyber ciphertext", Value: "aabbccddeeff00112233", Sensitive: true},
		{Label: "Filename", Value: "report.pdf.enc"},
	})

	out := rb.View()
	if strings.Contains(out, "aabbccddeeff00112233") {
		t.Error("sensitive value rendered in full")
	}
	if !strings.Contains(out, "aabbccdd...") {
		t.Error("sensitive value not elided")
	}
	if !strings.Contains(out, "report.pdf.enc") {
		t.Error("plain value missing")
	}

	rb.Next()
	rb.Next()
	if rb.selected != 0 {
		t.Errorf("selection should wrap, got %d", rb.selected)
	}
}

func TestHighlightFallback(t *testing.T) {
	out := Highlight(`{"a": 1}`, "json")
	if out == "" {
		t.Error("highlight produced nothing")
	}
	if HighlightJSON(map[string]int{"a": 1}) == "" {
		t.Error("HighlightJSON produced nothing")
	}
}

func TestRenderDistribution(t *testing.T) {
	stats := &monitor.Stats{
		Distribution: map[string]int{
			monitor.CategoryEncryption: 10,
			monitor.CategoryDecryption: 5,
			monitor.CategoryFailure:    2,
		},
	}
	out := RenderDistribution(testTheme(), stats, 60)
	for _, label := range []string{"Encrypt", "Decrypt", "Failure"} {
		if !strings.Contains(out, label) {
			t.Errorf("missing %s row", label)
		}
	}
	if !strings.Contains(out, "10") {
		t.Error("counts missing")
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	out := RenderTimeline(testTheme(), &monitor.Stats{})
	if !strings.Contains(out, "no activity") {
		t.Error("empty timeline placeholder missing")
	}
}

func TestRenderTimeline(t *testing.T) {
	stats := &monitor.Stats{
		Timeline: []monitor.TimelinePoint{
			{Time: "00:00", Events: 1},
			{Time: "01:00", Events: 4},
			{Time: "02:00", Events: 0},
		},
	}
	out := RenderTimeline(testTheme(), stats)
	if !strings.Contains(out, "#") {
		t.Error("no columns rendered")
	}
	if !strings.Contains(out, "00") {
		t.Error("axis labels missing")
	}
}
