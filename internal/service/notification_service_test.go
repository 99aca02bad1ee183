package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil {
		notification.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestNotificationService_CreateNotification_Success(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	userID := uuid.New()
	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(nil)

	notif, err := svc.CreateNotification(ctx, userID, models.NotificationTypeSystem, "Добро пожаловать", "Аккаунт создан", nil)

	assert.NoError(t, err)
	assert.Equal(t, userID, notif.UserID)
	assert.Equal(t, models.NotificationTypeSystem, notif.Type)
}

func TestNotificationService_CreateNotification_UnknownType(t *testing.T) {
	svc := NewNotificationService(new(mockNotificationRepo))

	_, err := svc.CreateNotification(context.Background(), uuid.New(), "spam", "t", "m", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный тип")
}

func TestNotificationService_MarkAsRead_OwnerOnly(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	notifID := uuid.New()
	repo.On("GetByID", ctx, notifID).Return(&models.Notification{ID: notifID, UserID: ownerID}, nil)
	repo.On("MarkAsRead", ctx, notifID).Return(nil)

	err := svc.MarkAsRead(ctx, notifID, uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет прав")
	repo.AssertNotCalled(t, "MarkAsRead", ctx, notifID)

	assert.NoError(t, svc.MarkAsRead(ctx, notifID, ownerID))
	repo.AssertCalled(t, "MarkAsRead", ctx, notifID)
}

func TestNotificationService_DeleteNotification_OwnerOnly(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	notifID := uuid.New()
	repo.On("GetByID", ctx, notifID).Return(&models.Notification{ID: notifID, UserID: ownerID}, nil)

	err := svc.DeleteNotification(ctx, notifID, uuid.New())

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Delete", ctx, notifID)
}

func TestNotificationService_ListNotifications_ClampsPage(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	userID := uuid.New()
	repo.On("List", ctx, userID, 20, 0, true).Return([]models.Notification{}, nil)

	_, err := svc.ListNotifications(ctx, userID, 0, -5, true)

	assert.NoError(t, err)
	repo.AssertCalled(t, "List", ctx, userID, 20, 0, true)
}
