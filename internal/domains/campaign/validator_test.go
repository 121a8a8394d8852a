package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSlot(t *testing.T) {
	valid := []string{"*", "00:00-23:59", "08:30-12:00", "19:00-21:45", "23:00-23:59"}
	for _, s := range valid {
		assert.True(t, ValidSlot(s), "slot %q should pass", s)
	}

	invalid := []string{
		"",
		"8:30-12:00",  // missing leading zero
		"08:30-24:00", // hour out of range
		"08:60-12:00", // minute out of range
		"08:30 - 12:00",
		"08:30–12:00", // wrong dash
		"08:30",
		"**",
		"08:30-12:00-14:00",
		"always",
	}
	for _, s := range invalid {
		assert.False(t, ValidSlot(s), "slot %q should fail", s)
	}
}

func TestBuildScheduleVersionAndOrder(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	req := StrategyRequest{
		AdsList: []AdItem{
			{ID: "mat_b", File: "b.mp4", MD5: "bbb", Priority: 2, Slots: []string{"08:00-12:00"}},
			{ID: "mat_a", File: "a.mp4", MD5: "aaa", Priority: 1, Slots: []string{"*"}},
		},
	}

	doc, err := BuildSchedule(req, now)
	require.NoError(t, err)

	assert.Equal(t, "schedule_update", doc.Type)
	assert.Equal(t, "20260315_v1", doc.Version)
	assert.Equal(t, defaultDownloadBaseURL, doc.DownloadBaseURL)

	// Submission order is preserved, never re-sorted by priority.
	require.Len(t, doc.Playlist, 2)
	assert.Equal(t, "mat_b", doc.Playlist[0].ID)
	assert.Equal(t, "mat_a", doc.Playlist[1].ID)
	assert.Equal(t, []string{"08:00-12:00"}, doc.Playlist[0].Slots)
}

func TestBuildScheduleBaseURLPreference(t *testing.T) {
	now := time.Now()
	ads := []AdItem{{ID: "mat_a", Slots: []string{"*"}}}

	doc, err := BuildSchedule(StrategyRequest{
		AdsList:         ads,
		DownloadBaseURL: "http://cdn.example.com/m",
		TimeRules:       map[string]any{"download_base_url": "http://rules.example.com/m"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/m", doc.DownloadBaseURL)

	doc, err = BuildSchedule(StrategyRequest{
		AdsList:   ads,
		TimeRules: map[string]any{"download_base_url": "http://rules.example.com/m"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "http://rules.example.com/m", doc.DownloadBaseURL)
}

func TestBuildScheduleRejectsWholesale(t *testing.T) {
	req := StrategyRequest{
		AdsList: []AdItem{
			{ID: "mat_ok", Slots: []string{"*"}},
			{ID: "mat_bad", Slots: []string{"25:00-26:00", "oops"}},
			{ID: "mat_worse", Slots: []string{"08:00-12:00", "8-12"}},
		},
	}

	doc, err := BuildSchedule(req, time.Now())
	assert.Nil(t, doc)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// Every offending ad and every offending slot is reported at once.
	assert.Equal(t, map[string][]string{
		"mat_bad":   {"25:00-26:00", "oops"},
		"mat_worse": {"8-12"},
	}, verr.BadSlots)
	assert.NotContains(t, verr.BadSlots, "mat_ok")
	assert.Contains(t, verr.Error(), "mat_bad")
	assert.Contains(t, verr.Error(), "mat_worse")
}

func TestBuildScheduleEmptyAds(t *testing.T) {
	doc, err := BuildSchedule(StrategyRequest{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, doc.Playlist)
	assert.NotNil(t, doc.Playlist)
}
