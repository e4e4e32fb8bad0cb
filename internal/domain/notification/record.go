package notification

import "time"

// Type tags a notification round for an entity. Together with the entity it
// forms the dedup key: at most one record may exist per (entity, type).
type Type string

const (
	TypeSevenDaysBefore   Type = "SEVEN_DAYS_BEFORE"
	TypeOnOpen            Type = "ON_OPEN"
	TypeTwentyFourHours   Type = "TWENTY_FOUR_HOURS_BEFORE_CLOSE"
	TypeDeclaration       Type = "DECLARATION_CONFIRMED"
	TypeProvisioningReady Type = "PROVISIONING_READY"
)

// EntityKind distinguishes the owning entity of a record.
type EntityKind string

const (
	EntityExam      EntityKind = "EXAM"
	EntityDirection EntityKind = "DIRECTION"
)

// Record marks a notification round as sent. It is inserted once after the
// full recipient loop and never updated.
type Record struct {
	ID         int64
	EntityKind EntityKind
	EntityID   int64
	Type       Type
	SentAt     time.Time
}
