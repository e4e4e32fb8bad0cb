package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recruitment_notification_bot/internal/domain/course"
)

// ErrCopyNotRecorded signals a missing duplication ledger row.
var ErrCopyNotRecorded = errors.New("course copy not recorded")

// PostgresCourseCatalog implements course.Catalog, course.Duplicator,
// course.CohortEnroller and course.CopyLedger on top of the course tables.
type PostgresCourseCatalog struct {
	db *sql.DB
}

func NewPostgresCourseCatalog(db *sql.DB) *PostgresCourseCatalog {
	return &PostgresCourseCatalog{db: db}
}

func (c *PostgresCourseCatalog) CreateCategory(ctx context.Context, cat *course.Category) error {
	query := `INSERT INTO categories (name, parent_id) VALUES ($1, NULLIF($2, 0)) RETURNING id`
	if err := c.db.QueryRowContext(ctx, query, cat.Name, cat.ParentID).Scan(&cat.ID); err != nil {
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

func (c *PostgresCourseCatalog) CreateCohort(ctx context.Context, ch *course.Cohort) error {
	query := `INSERT INTO cohorts (name) VALUES ($1) RETURNING id`
	if err := c.db.QueryRowContext(ctx, query, ch.Name).Scan(&ch.ID); err != nil {
		return fmt.Errorf("error creating cohort: %w", err)
	}
	return nil
}

func (c *PostgresCourseCatalog) GetCourseByID(ctx context.Context, id int64) (*course.Course, error) {
	query := `SELECT id, category_id, name, short_name, external_id, created_at
               FROM courses WHERE id = $1`
	crs := &course.Course{}
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&crs.ID, &crs.CategoryID, &crs.Name, &crs.ShortName, &crs.ExternalID, &crs.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return crs, nil
}

func (c *PostgresCourseCatalog) ListByCategory(ctx context.Context, categoryID int64) ([]*course.Course, error) {
	query := `SELECT id, category_id, name, short_name, external_id, created_at
               FROM courses WHERE category_id = $1 ORDER BY id`
	rows, err := c.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses by category: %w", err)
	}
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		crs := &course.Course{}
		if err := rows.Scan(&crs.ID, &crs.CategoryID, &crs.Name, &crs.ShortName, &crs.ExternalID, &crs.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, crs)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

func (c *PostgresCourseCatalog) CohortMemberIDs(ctx context.Context, cohortID int64) ([]int64, error) {
	query := `SELECT user_id FROM cohort_members WHERE cohort_id = $1 ORDER BY user_id`
	rows, err := c.db.QueryContext(ctx, query, cohortID)
	if err != nil {
		return nil, fmt.Errorf("error listing cohort members: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning cohort member: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cohort members: %w", err)
	}
	return ids, nil
}

func (c *PostgresCourseCatalog) AddCohortMember(ctx context.Context, cohortID, userID int64) error {
	query := `INSERT INTO cohort_members (cohort_id, user_id)
               VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := c.db.ExecContext(ctx, query, cohortID, userID); err != nil {
		return fmt.Errorf("error adding cohort member: %w", err)
	}
	return nil
}

// Duplicate performs a full deep copy of a course, its sections and modules
// inside one transaction. Either the whole copy exists afterwards or none of
// it does.
func (c *PostgresCourseCatalog) Duplicate(ctx context.Context, sourceCourseID int64, name, shortName string, destCategoryID int64) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting duplication transaction: %w", err)
	}
	defer tx.Rollback()

	var externalID string
	err = tx.QueryRowContext(ctx, `SELECT external_id FROM courses WHERE id = $1`, sourceCourseID).Scan(&externalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrCourseNotFound
		}
		return 0, fmt.Errorf("error loading source course: %w", err)
	}

	var newCourseID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO courses (category_id, name, short_name, external_id)
          VALUES ($1, $2, $3, $4) RETURNING id`,
		destCategoryID, name, shortName, externalID,
	).Scan(&newCourseID)
	if err != nil {
		return 0, fmt.Errorf("error inserting duplicated course: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO course_sections (course_id, position, name)
          SELECT $1, position, name FROM course_sections WHERE course_id = $2`,
		newCourseID, sourceCourseID,
	)
	if err != nil {
		return 0, fmt.Errorf("error duplicating course sections: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO course_modules (section_id, position, kind, name, payload)
          SELECT ns.id, m.position, m.kind, m.name, m.payload
          FROM course_modules m
          JOIN course_sections os ON os.id = m.section_id AND os.course_id = $2
          JOIN course_sections ns ON ns.course_id = $1 AND ns.position = os.position`,
		newCourseID, sourceCourseID,
	)
	if err != nil {
		return 0, fmt.Errorf("error duplicating course modules: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing duplication: %w", err)
	}
	return newCourseID, nil
}

// AttachCohortSync creates the cohort-sync enrolment method for a course and
// enrols the cohort's current members through it.
func (c *PostgresCourseCatalog) AttachCohortSync(ctx context.Context, courseID, cohortID int64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting cohort sync transaction: %w", err)
	}
	defer tx.Rollback()

	var methodID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO course_enrol_methods (course_id, method, cohort_id)
          VALUES ($1, $2, $3)
          ON CONFLICT (course_id, method, cohort_id) DO UPDATE SET method = EXCLUDED.method
          RETURNING id`,
		courseID, course.EnrolMethodCohortSync, cohortID,
	).Scan(&methodID)
	if err != nil {
		return fmt.Errorf("error attaching cohort sync method: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_enrolments (enrol_method_id, user_id)
          SELECT $1, user_id FROM cohort_members WHERE cohort_id = $2
          ON CONFLICT DO NOTHING`,
		methodID, cohortID,
	)
	if err != nil {
		return fmt.Errorf("error enrolling cohort members: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing cohort sync: %w", err)
	}
	return nil
}

// SyncCohort re-mirrors a cohort's membership into every course that carries a
// cohort-sync method for it: missing enrolments are added, enrolments of
// departed members removed.
func (c *PostgresCourseCatalog) SyncCohort(ctx context.Context, cohortID int64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting cohort resync transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_enrolments (enrol_method_id, user_id)
          SELECT em.id, cm.user_id
          FROM course_enrol_methods em
          JOIN cohort_members cm ON cm.cohort_id = em.cohort_id
          WHERE em.cohort_id = $1 AND em.method = $2
          ON CONFLICT DO NOTHING`,
		cohortID, course.EnrolMethodCohortSync,
	)
	if err != nil {
		return fmt.Errorf("error adding missing enrolments: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_enrolments ue
          USING course_enrol_methods em
          WHERE ue.enrol_method_id = em.id
            AND em.cohort_id = $1 AND em.method = $2
            AND NOT EXISTS (
              SELECT 1 FROM cohort_members cm
              WHERE cm.cohort_id = em.cohort_id AND cm.user_id = ue.user_id
            )`,
		cohortID, course.EnrolMethodCohortSync,
	)
	if err != nil {
		return fmt.Errorf("error removing stale enrolments: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing cohort resync: %w", err)
	}
	return nil
}

// Record writes one duplication ledger row.
func (c *PostgresCourseCatalog) Record(ctx context.Context, cp *course.Copy) error {
	query := `INSERT INTO direction_course_copies (direction_id, source_course_id, new_course_id)
               VALUES ($1, $2, $3)
               ON CONFLICT (direction_id, source_course_id) DO NOTHING
               RETURNING created_at`
	err := c.db.QueryRowContext(ctx, query, cp.DirectionID, cp.SourceCourseID, cp.NewCourseID).Scan(&cp.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("error recording course copy: %w", err)
	}
	return nil
}

// Find returns the recorded copy for (direction, source course).
func (c *PostgresCourseCatalog) Find(ctx context.Context, directionID, sourceCourseID int64) (*course.Copy, error) {
	query := `SELECT direction_id, source_course_id, new_course_id, created_at
               FROM direction_course_copies
               WHERE direction_id = $1 AND source_course_id = $2`
	cp := &course.Copy{}
	err := c.db.QueryRowContext(ctx, query, directionID, sourceCourseID).Scan(
		&cp.DirectionID, &cp.SourceCourseID, &cp.NewCourseID, &cp.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCopyNotRecorded
		}
		return nil, fmt.Errorf("error finding course copy: %w", err)
	}
	return cp, nil
}
