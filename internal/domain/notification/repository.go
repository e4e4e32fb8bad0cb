package notification

import (
	"context"
)

// Repository defines operations for notification dedup records.
type Repository interface {
	// Exists reports whether a record for (kind, entityID, notifType) is
	// already present.
	Exists(ctx context.Context, kind EntityKind, entityID int64, notifType Type) (bool, error)
	// Create inserts the dedup record. A concurrent sweep losing the insert
	// race gets ErrDuplicateRecord and must treat the round as already sent.
	Create(ctx context.Context, rec *Record) error
}
