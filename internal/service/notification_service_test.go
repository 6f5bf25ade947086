package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type mockNotificationRepo struct {
	notif     *models.Notification
	findErr   error
	list      []models.Notification
	lastLimit int
	marked    []string
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.notif, nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	m.lastLimit = limit
	return m.list, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.marked = append(m.marked, id)
	return nil
}

func TestNotificationServiceListUsesConfiguredLimit(t *testing.T) {
	repo := &mockNotificationRepo{list: []models.Notification{{ID: "n1"}}}
	svc := NewNotificationService(repo, zap.NewNop(), config.NotificationsConfig{ListLimit: 50})

	notifs, err := svc.List(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
	assert.Equal(t, 50, repo.lastLimit)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	repo := &mockNotificationRepo{notif: &models.Notification{ID: "n1", UserID: "u1"}}
	svc := NewNotificationService(repo, zap.NewNop(), config.NotificationsConfig{})

	err := svc.MarkRead(context.Background(), &models.JWTClaims{UserID: "u1"}, "n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, repo.marked)
}

func TestNotificationServiceMarkReadIdempotent(t *testing.T) {
	repo := &mockNotificationRepo{notif: &models.Notification{ID: "n1", UserID: "u1", Read: true}}
	svc := NewNotificationService(repo, zap.NewNop(), config.NotificationsConfig{})

	err := svc.MarkRead(context.Background(), &models.JWTClaims{UserID: "u1"}, "n1")
	require.NoError(t, err)
	assert.Empty(t, repo.marked)
}

func TestNotificationServiceMarkReadForeignNotification(t *testing.T) {
	repo := &mockNotificationRepo{notif: &models.Notification{ID: "n1", UserID: "someone-else"}}
	svc := NewNotificationService(repo, zap.NewNop(), config.NotificationsConfig{})

	err := svc.MarkRead(context.Background(), &models.JWTClaims{UserID: "u1"}, "n1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.marked)
}

func TestNotificationServiceMarkReadUnknown(t *testing.T) {
	repo := &mockNotificationRepo{findErr: sql.ErrNoRows}
	svc := NewNotificationService(repo, zap.NewNop(), config.NotificationsConfig{})

	err := svc.MarkRead(context.Background(), &models.JWTClaims{UserID: "u1"}, "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
