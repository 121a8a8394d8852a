package campaign

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

const defaultDownloadBaseURL = "http://127.0.0.1:8000/static/materials"

// slotPattern matches HH:MM-HH:MM with 00-23 hours and 00-59 minutes.
// The wildcard "*" is handled separately.
var slotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidationError lists every ad whose slot expressions failed the grammar.
// A request with any bad slot is rejected wholesale.
type ValidationError struct {
	BadSlots map[string][]string // ad id -> offending slot strings
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.BadSlots))
	for id := range e.BadSlots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: [%s]", id, strings.Join(e.BadSlots[id], ", ")))
	}
	return "invalid time slots: " + strings.Join(parts, "; ")
}

// ValidSlot reports whether a single slot expression matches the grammar.
func ValidSlot(slot string) bool {
	return slot == "*" || slotPattern.MatchString(slot)
}

// BuildSchedule validates a strategy request and produces the canonical
// schedule document. All ads and all slots are checked before failing, and a
// partially built document is never returned. Pure logic, no I/O.
func BuildSchedule(req StrategyRequest, now time.Time) (*ScheduleDocument, error) {
	bad := map[string][]string{}
	for _, ad := range req.AdsList {
		for _, slot := range ad.Slots {
			if !ValidSlot(slot) {
				bad[ad.ID] = append(bad[ad.ID], slot)
			}
		}
	}
	if len(bad) > 0 {
		return nil, &ValidationError{BadSlots: bad}
	}

	playlist := make([]PlaylistItem, 0, len(req.AdsList))
	for _, ad := range req.AdsList {
		playlist = append(playlist, PlaylistItem{
			ID:       ad.ID,
			File:     ad.File,
			MD5:      ad.MD5,
			Priority: ad.Priority,
			Slots:    ad.Slots,
		})
	}

	return &ScheduleDocument{
		Type:            "schedule_update",
		Version:         now.UTC().Format("20060102") + "_v1",
		DownloadBaseURL: resolveBaseURL(req),
		Playlist:        playlist,
	}, nil
}

// resolveBaseURL prefers the explicit request field, then a fallback key in
// the free-form time rules, then the hardcoded default.
func resolveBaseURL(req StrategyRequest) string {
	if req.DownloadBaseURL != "" {
		return req.DownloadBaseURL
	}
	if v, ok := req.TimeRules["download_base_url"].(string); ok && v != "" {
		return v
	}
	return defaultDownloadBaseURL
}
