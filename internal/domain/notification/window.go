package notification

import "time"

const (
	sevenDays       = 7 * 24 * time.Hour
	twentyFourHours = 24 * time.Hour
)

// DueTypes returns the notification types whose time window contains now, for
// an entity opening at opensAt and closing at closesAt. Windows are half-open:
//
//	SEVEN_DAYS_BEFORE               now in [opensAt-7d, opensAt)
//	ON_OPEN                         now >= opensAt
//	TWENTY_FOUR_HOURS_BEFORE_CLOSE  now in [closesAt-24h, closesAt)
//
// Each type is an independent dedup key, so overlapping windows (e.g. open and
// close less than 24h apart) still fire separately.
func DueTypes(now, opensAt, closesAt time.Time) []Type {
	var due []Type
	if !now.Before(opensAt.Add(-sevenDays)) && now.Before(opensAt) {
		due = append(due, TypeSevenDaysBefore)
	}
	if !now.Before(opensAt) {
		due = append(due, TypeOnOpen)
	}
	if !now.Before(closesAt.Add(-twentyFourHours)) && now.Before(closesAt) {
		due = append(due, TypeTwentyFourHours)
	}
	return due
}
