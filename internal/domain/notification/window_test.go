package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueTypes(t *testing.T) {
	opensAt := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	closesAt := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want []Type
	}{
		{"well before any window", opensAt.Add(-8 * 24 * time.Hour), nil},
		{"exactly seven days before", opensAt.Add(-7 * 24 * time.Hour), []Type{TypeSevenDaysBefore}},
		{"one day before open", opensAt.Add(-24 * time.Hour), []Type{TypeSevenDaysBefore}},
		{"exactly at open", opensAt, []Type{TypeOnOpen}},
		{"mid window", opensAt.Add(48 * time.Hour), []Type{TypeOnOpen}},
		{"exactly 24h before close", closesAt.Add(-24 * time.Hour), []Type{TypeOnOpen, TypeTwentyFourHours}},
		{"one minute before close", closesAt.Add(-time.Minute), []Type{TypeOnOpen, TypeTwentyFourHours}},
		{"exactly at close", closesAt, []Type{TypeOnOpen}},
		{"after close", closesAt.Add(time.Hour), []Type{TypeOnOpen}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueTypes(tt.now, opensAt, closesAt))
		})
	}
}

func TestDueTypesOverlappingWindows(t *testing.T) {
	// Open and close only 12 hours apart: once the window opens, the close
	// warning is already due as well.
	opensAt := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	closesAt := opensAt.Add(12 * time.Hour)

	got := DueTypes(opensAt.Add(time.Hour), opensAt, closesAt)
	assert.Equal(t, []Type{TypeOnOpen, TypeTwentyFourHours}, got)
}

func TestDueTypesSevenDayAndCloseWarningTogether(t *testing.T) {
	// A window closing less than 24h after now while the exam has not yet
	// opened fires the pre-open reminder and the close warning in one sweep.
	opensAt := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	closesAt := opensAt.Add(6 * time.Hour)

	got := DueTypes(opensAt.Add(-time.Hour), opensAt, closesAt)
	assert.Equal(t, []Type{TypeSevenDaysBefore, TypeTwentyFourHours}, got)
}
