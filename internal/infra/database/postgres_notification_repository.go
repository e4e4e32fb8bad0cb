package database

import (
	"context"
	"database/sql"
	"fmt"

	"recruitment_notification_bot/internal/domain/messaging"
	"recruitment_notification_bot/internal/domain/notification"

	"github.com/lib/pq"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Exists(ctx context.Context, kind notification.EntityKind, entityID int64, notifType notification.Type) (bool, error) {
	query := `SELECT EXISTS (
                 SELECT 1 FROM notification_records
                 WHERE entity_kind = $1 AND entity_id = $2 AND notification_type = $3
               )`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, kind, entityID, notifType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking notification record: %w", err)
	}
	return exists, nil
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, rec *notification.Record) error {
	query := `INSERT INTO notification_records (entity_kind, entity_id, notification_type, sent_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, rec.EntityKind, rec.EntityID, rec.Type, rec.SentAt).Scan(&rec.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("error creating notification record: %w", err)
	}
	return nil
}

// PostgresHistoryRepository persists the append-only SMS and mail audit logs.
type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) RecordSMS(ctx context.Context, h *messaging.SMSHistory) error {
	query := `INSERT INTO sms_history (user_id, phone, message, component, success, response)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, h.UserID, h.Phone, h.Message, h.Component, h.Success, h.Response).
		Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording sms history: %w", err)
	}
	return nil
}

func (r *PostgresHistoryRepository) RecordMail(ctx context.Context, h *messaging.MailHistory) error {
	query := `INSERT INTO mail_history (user_id, email, message, component, success, response)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, h.UserID, h.Email, h.Message, h.Component, h.Success, h.Response).
		Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording mail history: %w", err)
	}
	return nil
}
