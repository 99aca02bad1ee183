package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetByRequestAndReviewer(ctx context.Context, requestID, reviewerID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, requestID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, reviewedID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetAverageRating(ctx context.Context, reviewedID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, reviewedID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type mockRequestReader struct {
	mock.Mock
}

func (m *mockRequestReader) GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowRequest), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func completedRequest(ownerID, requesterID uuid.UUID) *models.BorrowRequest {
	return &models.BorrowRequest{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		RequesterID: requesterID,
		Status:      models.RequestStatusCompleted,
	}
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	notifier := new(mockNotifier)
	svc := NewReviewService(repo, requests, notifier)
	ctx := context.Background()

	ownerID := uuid.New()
	requesterID := uuid.New()
	req := completedRequest(ownerID, requesterID)

	requests.On("GetByID", ctx, req.ID).Return(req, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)
	notifier.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(nil)

	comment := "Всё вернул вовремя"
	review, err := svc.CreateReview(ctx, req.ID, ownerID, 5, &comment)

	assert.NoError(t, err)
	assert.Equal(t, requesterID, review.ReviewedID)
	assert.Equal(t, 5, review.Rating)

	// Уведомление об оценке уходит второй стороне.
	notif := notifier.Calls[0].Arguments.Get(1).(*models.Notification)
	assert.Equal(t, requesterID, notif.UserID)
	assert.Equal(t, models.NotificationTypeRating, notif.Type)
}

func TestReviewService_CreateReview_InvalidRating(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockRequestReader), new(mockNotifier))
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, uuid.New(), uuid.New(), 0, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "от 1 до 5")

	_, err = svc.CreateReview(ctx, uuid.New(), uuid.New(), 6, nil)
	assert.Error(t, err)
}

func TestReviewService_CreateReview_RequestNotCompleted(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	requestID := uuid.New()
	requests.On("GetByID", ctx, requestID).Return(&models.BorrowRequest{
		ID:     requestID,
		Status: models.RequestStatusAccepted,
	}, nil)

	_, err := svc.CreateReview(ctx, requestID, uuid.New(), 5, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "после завершения")
}

func TestReviewService_CreateReview_NotParticipant(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	req := completedRequest(uuid.New(), uuid.New())
	requests.On("GetByID", ctx, req.ID).Return(req, nil)

	_, err := svc.CreateReview(ctx, req.ID, uuid.New(), 5, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReviewService_CreateReview_AlreadyReviewed(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	ownerID := uuid.New()
	req := completedRequest(ownerID, uuid.New())

	requests.On("GetByID", ctx, req.ID).Return(req, nil)
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrReviewExists)

	_, err := svc.CreateReview(ctx, req.ID, ownerID, 4, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже оставили")
}

func TestReviewService_GetUserRating(t *testing.T) {
	repo := new(mockReviewRepo)
	svc := NewReviewService(repo, new(mockRequestReader), new(mockNotifier))
	ctx := context.Background()

	userID := uuid.New()
	repo.On("GetAverageRating", ctx, userID).Return(4.5, 12, nil)

	avg, count, err := svc.GetUserRating(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 12, count)
}

func TestReviewService_CanLeaveReview_True(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	ownerID := uuid.New()
	req := completedRequest(ownerID, uuid.New())

	requests.On("GetByID", ctx, req.ID).Return(req, nil)
	repo.On("GetByRequestAndReviewer", ctx, req.ID, ownerID).Return(nil, repository.ErrReviewNotFound)

	can, err := svc.CanLeaveReview(ctx, req.ID, ownerID)
	assert.NoError(t, err)
	assert.True(t, can)
}

func TestReviewService_CanLeaveReview_AlreadyReviewed(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	ownerID := uuid.New()
	req := completedRequest(ownerID, uuid.New())

	requests.On("GetByID", ctx, req.ID).Return(req, nil)
	repo.On("GetByRequestAndReviewer", ctx, req.ID, ownerID).Return(&models.Review{ID: uuid.New()}, nil)

	can, err := svc.CanLeaveReview(ctx, req.ID, ownerID)
	assert.NoError(t, err)
	assert.False(t, can)
}

func TestReviewService_CanLeaveReview_NotCompleted(t *testing.T) {
	repo := new(mockReviewRepo)
	requests := new(mockRequestReader)
	svc := NewReviewService(repo, requests, new(mockNotifier))
	ctx := context.Background()

	requestID := uuid.New()
	requests.On("GetByID", ctx, requestID).Return(&models.BorrowRequest{
		ID:     requestID,
		Status: models.RequestStatusPending,
	}, nil)

	can, err := svc.CanLeaveReview(ctx, requestID, uuid.New())
	assert.NoError(t, err)
	assert.False(t, can)
}
