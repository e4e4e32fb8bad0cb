package course

import (
	"context"
	"time"
)

// Copy is one row of the per-direction duplication ledger. Its presence means
// the source course was already duplicated for the direction, so a retried
// provisioning run must skip it instead of copying twice.
type Copy struct {
	DirectionID    int64
	SourceCourseID int64
	NewCourseID    int64
	CreatedAt      time.Time
}

// CopyLedger persists duplication progress, one row per
// (direction, source course).
type CopyLedger interface {
	Record(ctx context.Context, c *Copy) error
	// Find returns the recorded copy or ErrCopyNotRecorded.
	Find(ctx context.Context, directionID, sourceCourseID int64) (*Copy, error)
}
