package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// NotificationRepository reads and mutates notification rows. Creation
// happens inside the query transactions, never here.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// FindByID fetches a notification by ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, user_id, query_id, course_id, message, read, created_at FROM notifications WHERE id = $1`
	var notif models.Notification
	if err := r.db.GetContext(ctx, &notif, query, id); err != nil {
		return nil, err
	}
	return &notif, nil
}

// ListByUser returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const query = `SELECT id, user_id, query_id, course_id, message, read, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	var notifs []models.Notification
	if err := r.db.SelectContext(ctx, &notifs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

// MarkRead flips the read flag. Already-read rows are left untouched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
