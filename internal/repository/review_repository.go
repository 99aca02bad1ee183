package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

// Ошибки работы с отзывами.
var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("review already exists")
)

// ReviewRepository отвечает за отзывы по завершённым запросам.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт новый экземпляр.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет отзыв. Повторный отзыв по тому же запросу от того же
// автора отсекается уникальным индексом.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (request_id, reviewer_id, reviewed_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.RequestID,
		review.ReviewerID,
		review.ReviewedID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrReviewExists
		}
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `
		SELECT rv.*, u.display_name AS reviewer_name
		FROM reviews rv
		JOIN users u ON u.id = rv.reviewer_id
		WHERE rv.id = $1
	`
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}
	return &review, nil
}

// GetByRequestAndReviewer возвращает отзыв автора по конкретному запросу.
func (r *ReviewRepository) GetByRequestAndReviewer(ctx context.Context, requestID, reviewerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	query := `SELECT * FROM reviews WHERE request_id = $1 AND reviewer_id = $2`
	if err := r.db.GetContext(ctx, &review, query, requestID, reviewerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by request and reviewer %w", err)
	}
	return &review, nil
}

// ListByReviewedID возвращает отзывы о пользователе.
func (r *ReviewRepository) ListByReviewedID(ctx context.Context, reviewedID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	query := `
		SELECT rv.*, u.display_name AS reviewer_name
		FROM reviews rv
		JOIN users u ON u.id = rv.reviewer_id
		WHERE rv.reviewed_id = $1
		ORDER BY rv.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &reviews, query, reviewedID, limit, offset); err != nil {
		return nil, fmt.Errorf("review repository: list by reviewed %w", err)
	}
	return reviews, nil
}

// GetAverageRating возвращает средний рейтинг пользователя и число отзывов.
func (r *ReviewRepository) GetAverageRating(ctx context.Context, reviewedID uuid.UUID) (float64, int, error) {
	var row struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	query := `SELECT AVG(rating) AS avg, COUNT(*) AS count FROM reviews WHERE reviewed_id = $1`
	if err := r.db.GetContext(ctx, &row, query, reviewedID); err != nil {
		return 0, 0, fmt.Errorf("review repository: average rating %w", err)
	}
	return row.Avg.Float64, row.Count, nil
}
