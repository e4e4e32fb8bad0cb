package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recruitment_notification_bot/internal/domain/exam"
)

type PostgresExamRepository struct {
	db *sql.DB
}

func NewPostgresExamRepository(db *sql.DB) *PostgresExamRepository {
	return &PostgresExamRepository{db: db}
}

func (r *PostgresExamRepository) Create(ctx context.Context, e *exam.Exam) error {
	query := `INSERT INTO exams (direction_id, name, opens_at, closes_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, e.DirectionID, e.Name, e.OpensAt, e.ClosesAt).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating exam: %w", err)
	}
	return nil
}

func (r *PostgresExamRepository) GetByID(ctx context.Context, id int64) (*exam.Exam, error) {
	query := `SELECT id, direction_id, name, opens_at, closes_at, created_at
               FROM exams WHERE id = $1`
	e := &exam.Exam{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.DirectionID, &e.Name, &e.OpensAt, &e.ClosesAt, &e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("error getting exam by ID: %w", err)
	}
	return e, nil
}

func (r *PostgresExamRepository) ListAll(ctx context.Context) ([]*exam.Exam, error) {
	query := `SELECT id, direction_id, name, opens_at, closes_at, created_at
               FROM exams ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing exams: %w", err)
	}
	defer rows.Close()

	exams := make([]*exam.Exam, 0)
	for rows.Next() {
		e := &exam.Exam{}
		if err := rows.Scan(&e.ID, &e.DirectionID, &e.Name, &e.OpensAt, &e.ClosesAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning exam: %w", err)
		}
		exams = append(exams, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exams: %w", err)
	}
	return exams, nil
}

func (r *PostgresExamRepository) CreateResult(ctx context.Context, res *exam.Result) error {
	query := `INSERT INTO exam_results (exam_id, user_id, score, max_score, submitted_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, res.ExamID, res.UserID, res.Score, res.MaxScore, res.SubmittedAt).
		Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("error creating exam result: %w", err)
	}
	return nil
}

func (r *PostgresExamRepository) ListUnsentResults(ctx context.Context) ([]*exam.Result, error) {
	query := `SELECT id, exam_id, user_id, score, max_score, submitted_at, webhook_sent, sent_at
               FROM exam_results WHERE webhook_sent = FALSE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing unsent exam results: %w", err)
	}
	defer rows.Close()

	results := make([]*exam.Result, 0)
	for rows.Next() {
		res := &exam.Result{}
		if err := rows.Scan(&res.ID, &res.ExamID, &res.UserID, &res.Score, &res.MaxScore, &res.SubmittedAt, &res.WebhookSent, &res.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning exam result: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam results: %w", err)
	}
	return results, nil
}

func (r *PostgresExamRepository) MarkResultSent(ctx context.Context, resultID int64, sentAt time.Time) error {
	query := `UPDATE exam_results SET webhook_sent = TRUE, sent_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, sentAt, resultID)
	if err != nil {
		return fmt.Errorf("error marking exam result sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for result mark: %w", err)
	}
	if affected == 0 {
		return ErrResultNotFound
	}
	return nil
}
