package database

import (
	"context"
	"database/sql"
	"fmt"

	"recruitment_notification_bot/internal/domain/direction"

	"github.com/lib/pq"
)

type PostgresDirectionRepository struct {
	db *sql.DB
}

func NewPostgresDirectionRepository(db *sql.DB) *PostgresDirectionRepository {
	return &PostgresDirectionRepository{db: db}
}

func (r *PostgresDirectionRepository) CreateRecruitment(ctx context.Context, rec *direction.Recruitment) error {
	query := `INSERT INTO recruitments (name, year)
               VALUES ($1, $2)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rec.Name, rec.Year).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating recruitment: %w", err)
	}
	return nil
}

func (r *PostgresDirectionRepository) GetRecruitmentByID(ctx context.Context, id int64) (*direction.Recruitment, error) {
	query := `SELECT id, name, year, created_at FROM recruitments WHERE id = $1`
	rec := &direction.Recruitment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Name, &rec.Year, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecruitmentNotFound
		}
		return nil, fmt.Errorf("error getting recruitment by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresDirectionRepository) Create(ctx context.Context, d *direction.Direction) error {
	query := `INSERT INTO directions (recruitment_id, name, base_category_id, category_id, cohort_id, copy_status)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		d.RecruitmentID, d.Name, d.BaseCategoryID, d.CategoryID, d.CohortID, d.CopyStatus,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating direction: %w", err)
	}
	return nil
}

func (r *PostgresDirectionRepository) GetByID(ctx context.Context, id int64) (*direction.Direction, error) {
	query := `SELECT id, recruitment_id, name, base_category_id, category_id, cohort_id,
                      archive_course_id, preparation_course_id, quizes_course_id, copy_status,
                      created_at, updated_at
               FROM directions WHERE id = $1`
	d := &direction.Direction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.RecruitmentID, &d.Name, &d.BaseCategoryID, &d.CategoryID, &d.CohortID,
		&d.ArchiveCourseID, &d.PreparationCourseID, &d.QuizesCourseID, &d.CopyStatus,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDirectionNotFound
		}
		return nil, fmt.Errorf("error getting direction by ID: %w", err)
	}
	return d, nil
}

func (r *PostgresDirectionRepository) ListByRecruitment(ctx context.Context, recruitmentID int64) ([]*direction.Direction, error) {
	query := `SELECT id, recruitment_id, name, base_category_id, category_id, cohort_id,
                      archive_course_id, preparation_course_id, quizes_course_id, copy_status,
                      created_at, updated_at
               FROM directions WHERE recruitment_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, recruitmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing directions: %w", err)
	}
	defer rows.Close()

	directions := make([]*direction.Direction, 0)
	for rows.Next() {
		d := &direction.Direction{}
		if err := rows.Scan(
			&d.ID, &d.RecruitmentID, &d.Name, &d.BaseCategoryID, &d.CategoryID, &d.CohortID,
			&d.ArchiveCourseID, &d.PreparationCourseID, &d.QuizesCourseID, &d.CopyStatus,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning direction: %w", err)
		}
		directions = append(directions, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating directions: %w", err)
	}
	return directions, nil
}

// CompleteCopy is the single atomic statement that publishes the provisioning
// result. Until it runs, readers see a pending direction with no references.
func (r *PostgresDirectionRepository) CompleteCopy(ctx context.Context, id int64, archive, preparation, quizes sql.NullInt64) error {
	query := `UPDATE directions
               SET archive_course_id = $1, preparation_course_id = $2, quizes_course_id = $3,
                   copy_status = $4, updated_at = NOW()
               WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, archive, preparation, quizes, direction.CopyStatusDone, id)
	if err != nil {
		return fmt.Errorf("error completing direction copy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for direction copy: %w", err)
	}
	if affected == 0 {
		return ErrDirectionNotFound
	}
	return nil
}

func (r *PostgresDirectionRepository) AddUser(ctx context.Context, du *direction.DirectionUser) error {
	query := `INSERT INTO direction_users (direction_id, user_id, declared, notified)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, du.DirectionID, du.UserID, du.Declared, du.Notified).
		Scan(&du.ID, &du.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateDirectionUser
		}
		return fmt.Errorf("error adding direction user: %w", err)
	}
	return nil
}

func (r *PostgresDirectionRepository) GetUser(ctx context.Context, directionID, userID int64) (*direction.DirectionUser, error) {
	query := `SELECT id, direction_id, user_id, declared, notified, notified_at, created_at
               FROM direction_users WHERE direction_id = $1 AND user_id = $2`
	du := &direction.DirectionUser{}
	err := r.db.QueryRowContext(ctx, query, directionID, userID).Scan(
		&du.ID, &du.DirectionID, &du.UserID, &du.Declared, &du.Notified, &du.NotifiedAt, &du.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDirectionUserNotFound
		}
		return nil, fmt.Errorf("error getting direction user: %w", err)
	}
	return du, nil
}

// MarkDeclared implements the guarded one-way transition: the predicate on
// declared makes a replayed declare a zero-row update instead of a re-send.
func (r *PostgresDirectionRepository) MarkDeclared(ctx context.Context, directionID, userID int64) error {
	query := `UPDATE direction_users SET declared = TRUE
               WHERE direction_id = $1 AND user_id = $2 AND declared = FALSE`
	res, err := r.db.ExecContext(ctx, query, directionID, userID)
	if err != nil {
		return fmt.Errorf("error marking direction user declared: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for declare: %w", err)
	}
	if affected == 0 {
		// Distinguish "already declared" from "no such row".
		if _, getErr := r.GetUser(ctx, directionID, userID); getErr != nil {
			return getErr
		}
		return ErrAlreadyDeclared
	}
	return nil
}

func (r *PostgresDirectionRepository) MarkNotified(ctx context.Context, directionID, userID int64) error {
	query := `UPDATE direction_users SET notified = TRUE, notified_at = NOW()
               WHERE direction_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, directionID, userID)
	if err != nil {
		return fmt.Errorf("error marking direction user notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for notify mark: %w", err)
	}
	if affected == 0 {
		return ErrDirectionUserNotFound
	}
	return nil
}

func (r *PostgresDirectionRepository) ListUsersByDirection(ctx context.Context, directionID int64) ([]*direction.DirectionUser, error) {
	query := `SELECT id, direction_id, user_id, declared, notified, notified_at, created_at
               FROM direction_users WHERE direction_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, directionID)
	if err != nil {
		return nil, fmt.Errorf("error listing direction users: %w", err)
	}
	defer rows.Close()

	users := make([]*direction.DirectionUser, 0)
	for rows.Next() {
		du := &direction.DirectionUser{}
		if err := rows.Scan(&du.ID, &du.DirectionID, &du.UserID, &du.Declared, &du.Notified, &du.NotifiedAt, &du.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning direction user: %w", err)
		}
		users = append(users, du)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating direction users: %w", err)
	}
	return users, nil
}
