package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) ListUndelivered(ctx context.Context, limit, maxAttempts int) ([]models.Notification, error) {
	args := m.Called(ctx, limit, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockOutboxRepo) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

func (m *mockPusher) IsOnline(userID uuid.UUID) bool {
	args := m.Called(userID)
	return args.Bool(0)
}

func TestNotificationDispatcher_DispatchOnce_MarksDelivered(t *testing.T) {
	repo := new(mockOutboxRepo)
	pusher := new(mockPusher)
	d := NewNotificationDispatcher(repo, pusher, 0, 0, 0)
	ctx := context.Background()

	userID := uuid.New()
	notif := models.Notification{ID: uuid.New(), UserID: userID, Type: models.NotificationTypeRequest}

	repo.On("ListUndelivered", ctx, 50, 10).Return([]models.Notification{notif}, nil)
	pusher.On("IsOnline", userID).Return(true)
	pusher.On("BroadcastToUser", userID, "notification", mock.Anything).Return(nil)
	repo.On("MarkDelivered", ctx, notif.ID).Return(nil)

	d.DispatchOnce(ctx)

	repo.AssertCalled(t, "MarkDelivered", ctx, notif.ID)
	repo.AssertNotCalled(t, "IncrementAttempts", ctx, notif.ID)
}

func TestNotificationDispatcher_DispatchOnce_RetryOnPushFailure(t *testing.T) {
	repo := new(mockOutboxRepo)
	pusher := new(mockPusher)
	d := NewNotificationDispatcher(repo, pusher, 0, 0, 0)
	ctx := context.Background()

	userID := uuid.New()
	notif := models.Notification{ID: uuid.New(), UserID: userID}

	repo.On("ListUndelivered", ctx, 50, 10).Return([]models.Notification{notif}, nil)
	pusher.On("IsOnline", userID).Return(true)
	pusher.On("BroadcastToUser", userID, "notification", mock.Anything).Return(errors.New("соединение закрыто"))
	repo.On("IncrementAttempts", ctx, notif.ID).Return(nil)

	d.DispatchOnce(ctx)

	// Недоставленное уведомление остаётся в очереди до следующего опроса.
	repo.AssertNotCalled(t, "MarkDelivered", ctx, notif.ID)
	repo.AssertCalled(t, "IncrementAttempts", ctx, notif.ID)
}

func TestNotificationDispatcher_DispatchOnce_ContinuesAfterFailure(t *testing.T) {
	repo := new(mockOutboxRepo)
	pusher := new(mockPusher)
	d := NewNotificationDispatcher(repo, pusher, 0, 0, 0)
	ctx := context.Background()

	failing := models.Notification{ID: uuid.New(), UserID: uuid.New()}
	healthy := models.Notification{ID: uuid.New(), UserID: uuid.New()}

	repo.On("ListUndelivered", ctx, 50, 10).Return([]models.Notification{failing, healthy}, nil)
	pusher.On("IsOnline", mock.Anything).Return(true)
	pusher.On("BroadcastToUser", failing.UserID, "notification", mock.Anything).Return(errors.New("соединение закрыто"))
	pusher.On("BroadcastToUser", healthy.UserID, "notification", mock.Anything).Return(nil)
	repo.On("IncrementAttempts", ctx, failing.ID).Return(nil)
	repo.On("MarkDelivered", ctx, healthy.ID).Return(nil)

	d.DispatchOnce(ctx)

	repo.AssertCalled(t, "IncrementAttempts", ctx, failing.ID)
	repo.AssertCalled(t, "MarkDelivered", ctx, healthy.ID)
}

func TestNotificationDispatcher_DispatchOnce_OfflineStaysQueued(t *testing.T) {
	repo := new(mockOutboxRepo)
	pusher := new(mockPusher)
	d := NewNotificationDispatcher(repo, pusher, 0, 0, 0)
	ctx := context.Background()

	userID := uuid.New()
	notif := models.Notification{ID: uuid.New(), UserID: userID}

	repo.On("ListUndelivered", ctx, 50, 10).Return([]models.Notification{notif}, nil)
	pusher.On("IsOnline", userID).Return(false)

	d.DispatchOnce(ctx)

	// Без подключений уведомление не трогаем: ни отправки, ни отметки
	// доставки, ни расхода попыток.
	pusher.AssertNotCalled(t, "BroadcastToUser", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkDelivered", ctx, notif.ID)
	repo.AssertNotCalled(t, "IncrementAttempts", ctx, notif.ID)
}

func TestNotificationDispatcher_DispatchOnce_ListError(t *testing.T) {
	repo := new(mockOutboxRepo)
	pusher := new(mockPusher)
	d := NewNotificationDispatcher(repo, pusher, 0, 0, 0)
	ctx := context.Background()

	repo.On("ListUndelivered", ctx, 50, 10).Return(nil, errors.New("база недоступна"))

	d.DispatchOnce(ctx)

	pusher.AssertNotCalled(t, "BroadcastToUser", mock.Anything, mock.Anything, mock.Anything)
}
