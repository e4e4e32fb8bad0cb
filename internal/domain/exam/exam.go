package exam

import (
	"context"
	"database/sql"
	"time"
)

// Exam is an internal test with an open/close window, tied to a direction.
// The notification sweep evaluates its window on every run.
type Exam struct {
	ID          int64
	DirectionID int64
	Name        string
	OpensAt     time.Time
	ClosesAt    time.Time
	CreatedAt   time.Time
}

// Result is a per-user exam summary pushed to the results webhook. WebhookSent
// flips to true after a successful push and never reverts.
type Result struct {
	ID          int64
	ExamID      int64
	UserID      int64
	Score       float64
	MaxScore    float64
	SubmittedAt time.Time
	WebhookSent bool
	SentAt      sql.NullTime
}

// Repository defines persistence for exams and their results.
type Repository interface {
	Create(ctx context.Context, e *Exam) error
	GetByID(ctx context.Context, id int64) (*Exam, error)
	ListAll(ctx context.Context) ([]*Exam, error)

	CreateResult(ctx context.Context, r *Result) error
	ListUnsentResults(ctx context.Context) ([]*Result, error)
	MarkResultSent(ctx context.Context, resultID int64, sentAt time.Time) error
}
