package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/logger"
	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/validation"
)

// ReviewRepository описывает зависимости сервиса отзывов от хранилища.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	GetByRequestAndReviewer(ctx context.Context, requestID, reviewerID uuid.UUID) (*models.Review, error)
	ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error)
	GetAverageRating(ctx context.Context, reviewedID uuid.UUID) (float64, int, error)
}

// RequestReaderForReview даёт сервису отзывов доступ к заявкам.
type RequestReaderForReview interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRequest, error)
}

// ReviewService содержит бизнес-логику отзывов по завершённым сделкам.
type ReviewService struct {
	repo     ReviewRepository
	requests RequestReaderForReview
	notifier MessageNotifier
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(repo ReviewRepository, requests RequestReaderForReview, notifier MessageNotifier) *ReviewService {
	return &ReviewService{repo: repo, requests: requests, notifier: notifier}
}

// CreateReview создаёт отзыв после завершённой сделки. Каждая сторона может
// оставить по одному отзыву о второй стороне.
func (s *ReviewService) CreateReview(ctx context.Context, requestID, reviewerID uuid.UUID, rating int, comment *string) (*models.Review, error) {
	if err := validation.ValidateRating(rating); err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}
	if err := validation.ValidateReviewComment(comment); err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}

	if req.Status != models.RequestStatusCompleted {
		return nil, fmt.Errorf("review service: отзыв можно оставить только после завершения сделки")
	}

	var reviewedID uuid.UUID
	switch reviewerID {
	case req.OwnerID:
		reviewedID = req.RequesterID
	case req.RequesterID:
		reviewedID = req.OwnerID
	default:
		return nil, apperror.ErrForbidden
	}

	review := &models.Review{
		RequestID:  requestID,
		ReviewerID: reviewerID,
		ReviewedID: reviewedID,
		Rating:     rating,
		Comment:    comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, fmt.Errorf("review service: вы уже оставили отзыв по этой сделке")
		}
		return nil, err
	}

	link := fmt.Sprintf("/users/%s/reviews", reviewedID)
	notif := &models.Notification{
		UserID:  reviewedID,
		Type:    models.NotificationTypeRating,
		Title:   "Новый отзыв",
		Message: fmt.Sprintf("О вас оставили отзыв с оценкой %d", rating),
		Link:    &link,
	}
	if err := s.notifier.Create(ctx, notif); err != nil && logger.Log != nil {
		logger.Log.Warnf("review service: уведомление об отзыве: %v", err)
	}

	return review, nil
}

// GetReview возвращает отзыв по ID.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "отзыв не найден")
		}
		return nil, err
	}
	return review, nil
}

// ListUserReviews возвращает отзывы о пользователе.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Review, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByReviewedID(ctx, userID, limit, offset)
}

// GetUserRating возвращает средний рейтинг и количество отзывов.
func (s *ReviewService) GetUserRating(ctx context.Context, userID uuid.UUID) (float64, int, error) {
	return s.repo.GetAverageRating(ctx, userID)
}

// CanLeaveReview проверяет, может ли пользователь оставить отзыв по сделке.
func (s *ReviewService) CanLeaveReview(ctx context.Context, requestID, userID uuid.UUID) (bool, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return false, nil
	}
	if req.Status != models.RequestStatusCompleted {
		return false, nil
	}
	if !req.IsParticipant(userID) {
		return false, nil
	}
	if _, err := s.repo.GetByRequestAndReviewer(ctx, requestID, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return false, err
	}
	return true, nil
}
