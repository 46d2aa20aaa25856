// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package monitor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsUnmarshal(t *testing.T) {
	raw := `{
		"total_events": 42,
		"events_last_24h": 7,
		"distribution": {"ENCRYPTION": 30, "DECRYPTION": 9, "FAILURE": 2, "OTHER": 1},
		"timeline": [{"time": "13:00", "events": 3}, {"time": "14:00", "events": 4}]
	}`

	var s Stats
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, 42, s.TotalEvents)
	assert.Equal(t, 7, s.EventsLast24h)
	assert.Equal(t, 2, s.Failures())
	require.Len(t, s.Timeline, 2)
	assert.Equal(t, "13:00", s.Timeline[0].Time)
	assert.Equal(t, 4, s.MaxTimelineEvents())
}

func TestDistributionBars(t *testing.T) {
	s := Stats{Distribution: map[string]int{
		CategoryEncryption: 5,
		CategoryFailure:    1,
	}}

	bars := s.DistributionBars()
	require.Len(t, bars, 3)
	assert.Equal(t, 5, bars[0].Count)
	assert.Equal(t, 0, bars[1].Count) // absent category renders as zero
	assert.Equal(t, 1, bars[2].Count)
}

func TestDistributionBarsNilMap(t *testing.T) {
	var s Stats
	for _, bar := range s.DistributionBars() {
		assert.Zero(t, bar.Count)
	}
	assert.Zero(t, s.Failures())
}

func TestAlertText(t *testing.T) {
	structured := Alert{UserID: "bob", Issue: "Excessive Decryption Failures", Count: 4, Severity: "HIGH"}
	assert.Equal(t, "bob: Excessive Decryption Failures (x4)", structured.Text())

	plain := Alert{Message: "service restarted"}
	assert.Equal(t, "service restarted", plain.Text())
}

func TestAlertTime(t *testing.T) {
	assert.True(t, Alert{}.Time().IsZero())
	assert.False(t, Alert{Timestamp: 1714659600}.Time().IsZero())
}
