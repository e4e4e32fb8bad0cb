package database

import (
	"context"
	"database/sql"
	"fmt"

	"recruitment_notification_bot/internal/domain/direction"

	"github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *direction.User) error {
	query := `INSERT INTO users (first_name, last_name, email, phone, telegram_id)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, u.FirstName, u.LastName, u.Email, u.Phone, u.TelegramID).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*direction.User, error) {
	query := `SELECT id, first_name, last_name, email, phone, telegram_id, created_at
               FROM users WHERE id = $1`
	u := &direction.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.TelegramID, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) ListByIDs(ctx context.Context, ids []int64) ([]*direction.User, error) {
	if len(ids) == 0 {
		return []*direction.User{}, nil
	}
	query := `SELECT id, first_name, last_name, email, phone, telegram_id, created_at
               FROM users WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error listing users by IDs: %w", err)
	}
	defer rows.Close()

	users := make([]*direction.User, 0, len(ids))
	for rows.Next() {
		u := &direction.User{}
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.TelegramID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
