package direction

import (
	"database/sql"
	"time"
)

// CopyStatus tracks the asynchronous course-duplication job for a direction.
type CopyStatus string

const (
	CopyStatusPending CopyStatus = "PENDING"
	CopyStatusDone    CopyStatus = "DONE"
)

// Recruitment is the top-level intake grouping that owns directions.
type Recruitment struct {
	ID        int64
	Name      string
	Year      int
	CreatedAt time.Time
}

// Direction is a course track under a recruitment. It owns a category, a
// cohort and, once provisioning finishes, up to three produced courses.
// Corresponds to the 'directions' table.
type Direction struct {
	ID                  int64
	RecruitmentID       int64
	Name                string
	BaseCategoryID      int64
	CategoryID          int64
	CohortID            int64
	ArchiveCourseID     sql.NullInt64
	PreparationCourseID sql.NullInt64
	QuizesCourseID      sql.NullInt64
	CopyStatus          CopyStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// User is a platform user targeted by notifications. Phone and TelegramID
// are optional; channels skip recipients that lack them.
type User struct {
	ID         int64
	FirstName  string
	LastName   sql.NullString
	Email      string
	Phone      sql.NullString
	TelegramID sql.NullInt64
	CreatedAt  time.Time
}

// DirectionUser joins a user to a direction. Declared is a one-way flag:
// once true it never goes back to false.
type DirectionUser struct {
	ID          int64
	DirectionID int64
	UserID      int64
	Declared    bool
	Notified    bool
	NotifiedAt  sql.NullTime
	CreatedAt   time.Time
}
