package database

import (
	"context"
	"database/sql"
	"fmt"

	"recruitment_notification_bot/internal/domain/task"
)

// taskErrorLimit bounds the stored error text for failed tasks.
const taskErrorLimit = 500

type PostgresTaskQueue struct {
	db *sql.DB
}

func NewPostgresTaskQueue(db *sql.DB) *PostgresTaskQueue {
	return &PostgresTaskQueue{db: db}
}

func (q *PostgresTaskQueue) Enqueue(ctx context.Context, t *task.Provisioning) error {
	query := `INSERT INTO provisioning_tasks (id, direction_id, name_token, status, attempts, max_attempts)
               VALUES ($1, $2, $3, $4, 0, $5)
               RETURNING enqueued_at`
	err := q.db.QueryRowContext(ctx, query, t.ID, t.DirectionID, t.NameToken, task.StatusQueued, t.MaxAttempts).
		Scan(&t.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("error enqueueing provisioning task: %w", err)
	}
	t.Status = task.StatusQueued
	return nil
}

// Claim picks the oldest queued task and marks it running in one transaction.
// SKIP LOCKED keeps concurrent workers off the same row.
func (q *PostgresTaskQueue) Claim(ctx context.Context) (*task.Provisioning, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting claim transaction: %w", err)
	}
	defer tx.Rollback()

	t := &task.Provisioning{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, direction_id, name_token, status, attempts, max_attempts, last_error,
                 enqueued_at, started_at, finished_at
          FROM provisioning_tasks
          WHERE status = $1
          ORDER BY enqueued_at
          LIMIT 1
          FOR UPDATE SKIP LOCKED`,
		task.StatusQueued,
	).Scan(
		&t.ID, &t.DirectionID, &t.NameToken, &t.Status, &t.Attempts, &t.MaxAttempts, &t.LastError,
		&t.EnqueuedAt, &t.StartedAt, &t.FinishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoTask
		}
		return nil, fmt.Errorf("error selecting queued task: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE provisioning_tasks
          SET status = $1, attempts = attempts + 1, started_at = NOW()
          WHERE id = $2
          RETURNING attempts, started_at`,
		task.StatusRunning, t.ID,
	).Scan(&t.Attempts, &t.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("error marking task running: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing claim: %w", err)
	}
	t.Status = task.StatusRunning
	return t, nil
}

func (q *PostgresTaskQueue) MarkDone(ctx context.Context, id string) error {
	query := `UPDATE provisioning_tasks
               SET status = $1, finished_at = NOW()
               WHERE id = $2`
	res, err := q.db.ExecContext(ctx, query, task.StatusDone, id)
	if err != nil {
		return fmt.Errorf("error marking task done: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for task done: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// MarkFailed re-queues the task while attempts remain, otherwise parks it as
// FAILED. The returned flag reports a terminal failure.
func (q *PostgresTaskQueue) MarkFailed(ctx context.Context, id string, cause error) (bool, error) {
	msg := cause.Error()
	if len(msg) > taskErrorLimit {
		msg = msg[:taskErrorLimit]
	}

	query := `UPDATE provisioning_tasks
               SET status = CASE WHEN attempts >= max_attempts THEN $1 ELSE $2 END,
                   last_error = $3,
                   finished_at = CASE WHEN attempts >= max_attempts THEN NOW() ELSE NULL END
               WHERE id = $4
               RETURNING status`
	var status task.Status
	err := q.db.QueryRowContext(ctx, query, task.StatusFailed, task.StatusQueued, msg, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("error marking task failed: %w", err)
	}
	return status == task.StatusFailed, nil
}
