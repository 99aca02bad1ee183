package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

// ErrReportNotFound возвращается, когда жалоба не найдена.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository отвечает за жалобы пользователей.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт новый экземпляр.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет новую жалобу.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (reporter_id, target_type, target_id, reason, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		report.ReporterID,
		report.TargetType,
		report.TargetID,
		report.Reason,
		report.Description,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

// GetByID возвращает жалобу по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

// ListByReporter возвращает жалобы, поданные пользователем.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	query := `SELECT * FROM reports WHERE reporter_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &reports, query, reporterID, limit, offset); err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}
	return reports, nil
}

// ListByStatus возвращает жалобы в заданном статусе (для модерации).
// Пустой статус означает все жалобы.
func (r *ReportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	var (
		reports []models.Report
		err     error
	)
	if status == "" {
		query := `SELECT * FROM reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		err = r.db.SelectContext(ctx, &reports, query, limit, offset)
	} else {
		query := `SELECT * FROM reports WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		err = r.db.SelectContext(ctx, &reports, query, status, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("report repository: list by status %w", err)
	}
	return reports, nil
}

// UpdateStatus выставляет решение модератора по жалобе.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $1, reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $3
	`, status, reviewedBy, id)
	if err != nil {
		return fmt.Errorf("report repository: update status %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: update status rows affected %w", err)
	}
	if rows == 0 {
		return ErrReportNotFound
	}
	return nil
}
