package task

import (
	"context"
	"database/sql"
	"time"
)

// Status of a queued provisioning task.
type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusFailed  Status = "FAILED"
)

// Provisioning is one queued course-copy job for a direction. Exactly one is
// enqueued per direction, at creation time.
type Provisioning struct {
	ID          string // UUID, doubles as the idempotency key for the job
	DirectionID int64
	NameToken   string // suffix appended to unclassified course copies
	Status      Status
	Attempts    int
	MaxAttempts int
	LastError   sql.NullString
	EnqueuedAt  time.Time
	StartedAt   sql.NullTime
	FinishedAt  sql.NullTime
}

// Queue is the postgres-backed job queue consumed by the worker.
type Queue interface {
	Enqueue(ctx context.Context, t *Provisioning) error
	// Claim atomically picks the oldest QUEUED task, marks it RUNNING and
	// returns it. It returns ErrNoTask when the queue is empty. Claimed rows
	// are locked with FOR UPDATE SKIP LOCKED so concurrent workers never
	// pick the same task.
	Claim(ctx context.Context) (*Provisioning, error)
	MarkDone(ctx context.Context, id string) error
	// MarkFailed records the error. The task goes back to QUEUED while
	// attempts remain below MaxAttempts, otherwise to FAILED. It reports
	// whether the failure was terminal.
	MarkFailed(ctx context.Context, id string, cause error) (terminal bool, err error)
}
