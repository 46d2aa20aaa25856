// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package monitor models the security telemetry served by the encryption
// service: aggregate event statistics and active anomaly alerts. The charts
// on the alerts view are pure projections over Stats; nothing here is
// fetched separately.
package monitor

import (
	"fmt"
	"time"
)

// Event distribution categories reported by the service.
const (
	CategoryEncryption = "ENCRYPTION"
	CategoryDecryption = "DECRYPTION"
	CategoryFailure    = "FAILURE"
	CategoryOther      = "OTHER"
)

// TimelinePoint is one hourly bucket of the 24h activity timeline.
type TimelinePoint struct {
	Time   string `json:"time"` // "HH:00" wall-clock label
	Events int    `json:"events"`
}

// Stats is the aggregate event view served by GET /monitor/stats.
type Stats struct {
	TotalEvents   int             `json:"total_events"`
	EventsLast24h int             `json:"events_last_24h"`
	Distribution  map[string]int  `json:"distribution"`
	Timeline      []TimelinePoint `json:"timeline"`
}

// Failures returns the failure count from the distribution.
func (s *Stats) Failures() int {
	if s.Distribution == nil {
		return 0
	}
	return s.Distribution[CategoryFailure]
}

// DistributionBars returns the categorical chart series in display order.
// Categories absent from the served distribution render as zero.
func (s *Stats) DistributionBars() []DistributionBar {
	get := func(k string) int {
		if s.Distribution == nil {
			return 0
		}
		return s.Distribution[k]
	}
	return []DistributionBar{
		{Label: "Encrypt", Category: CategoryEncryption, Count: get(CategoryEncryption)},
		{Label: "Decrypt", Category: CategoryDecryption, Count: get(CategoryDecryption)},
		{Label: "Failure", Category: CategoryFailure, Count: get(CategoryFailure)},
	}
}

// DistributionBar is one bar of the event distribution chart.
type DistributionBar struct {
	Label    string
	Category string
	Count    int
}

// MaxTimelineEvents returns the largest hourly bucket, used to scale the
// timeline chart. Returns 0 for an empty timeline.
func (s *Stats) MaxTimelineEvents() int {
	max := 0
	for _, p := range s.Timeline {
		if p.Events > max {
			max = p.Events
		}
	}
	return max
}

// Alert is one active anomaly reported by GET /monitor/alerts. The anomaly
// engine emits structured records; older deployments sent bare strings, so
// Message carries a fallback.
type Alert struct {
	UserID    string  `json:"user_id,omitempty"`
	Issue     string  `json:"issue,omitempty"`
	Count     int     `json:"count,omitempty"`
	Severity  string  `json:"severity,omitempty"`
	Message   string  `json:"message,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Text returns the display line for the alert.
func (a Alert) Text() string {
	if a.Issue != "" {
		if a.UserID != "" {
			return fmt.Sprintf("%s: %s (x%d)", a.UserID, a.Issue, a.Count)
		}
		return a.Issue
	}
	return a.Message
}

// Time returns the alert timestamp, or the zero time when absent.
func (a Alert) Time() time.Time {
	if a.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(int64(a.Timestamp), 0)
}
