package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type notificationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationService serves a user's notification feed. Dispatch is
// not done here: notifications are created inside the query store
// transactions so they cannot outlive a rolled-back write.
type NotificationService struct {
	repo      notificationRepository
	logger    *zap.Logger
	listLimit int
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, logger *zap.Logger, cfg config.NotificationsConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 50
	}
	return &NotificationService{repo: repo, logger: logger, listLimit: limit}
}

// List returns the acting user's notifications, newest first, capped
// at the configured feed limit.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims) ([]models.Notification, error) {
	notifs, err := s.repo.ListByUser(ctx, actor.UserID, s.listLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifs, nil
}

// MarkRead marks one of the acting user's notifications as read.
// Marking an already-read notification is a no-op; marking someone
// else's is forbidden.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.JWTClaims, id string) error {
	notif, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notif.UserID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
	}
	if notif.Read {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
