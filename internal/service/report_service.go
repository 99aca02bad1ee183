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

// Ошибки жалоб.
var (
	ErrInvalidReportTarget = errors.New("неизвестный тип объекта жалобы")
	ErrInvalidReportStatus = errors.New("неизвестный статус жалобы")
)

// ReportRepositoryIface описывает зависимости сервиса жалоб от хранилища.
type ReportRepositoryIface interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedBy uuid.UUID) error
}

// UserBanner выставляет блокировку пользователя при решении по жалобе.
type UserBanner interface {
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
}

// ReportService содержит бизнес-логику жалоб и их модерации.
type ReportService struct {
	repo     ReportRepositoryIface
	users    UserBanner
	notifier MessageNotifier
}

// NewReportService создаёт сервис жалоб.
func NewReportService(repo ReportRepositoryIface, users UserBanner, notifier MessageNotifier) *ReportService {
	return &ReportService{repo: repo, users: users, notifier: notifier}
}

// CreateReport регистрирует жалобу пользователя.
func (s *ReportService) CreateReport(ctx context.Context, reporterID uuid.UUID, targetType string, targetID uuid.UUID, reason string, description *string) (*models.Report, error) {
	validTypes := map[string]bool{
		models.ReportTargetUser:    true,
		models.ReportTargetItem:    true,
		models.ReportTargetMessage: true,
	}
	if !validTypes[targetType] {
		return nil, ErrInvalidReportTarget
	}
	if err := validation.ValidateReportReason(reason); err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}
	if err := validation.ValidateReportDescription(description); err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}

	r := &models.Report{
		ReporterID:  reporterID,
		TargetType:  targetType,
		TargetID:    targetID,
		Reason:      reason,
		Description: description,
		Status:      models.ReportStatusPending,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetReport возвращает жалобу заявителю или админу.
func (s *ReportService) GetReport(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "жалоба не найдена")
		}
		return nil, err
	}
	if report.ReporterID != userID && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return report, nil
}

// ListMyReports возвращает жалобы, поданные пользователем.
func (s *ReportService) ListMyReports(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Report, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByReporter(ctx, userID, limit, offset)
}

// ListReports возвращает жалобы по статусу (для модерации).
func (s *ReportService) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	if status != "" {
		if _, ok := models.ValidReportStatuses[status]; !ok {
			return nil, ErrInvalidReportStatus
		}
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// ResolveReport фиксирует решение модератора. При статусе action_taken по
// жалобе на пользователя нарушитель блокируется.
func (s *ReportService) ResolveReport(ctx context.Context, id, adminID uuid.UUID, status string) (*models.Report, error) {
	if _, ok := models.ValidReportStatuses[status]; !ok || status == models.ReportStatusPending {
		return nil, ErrInvalidReportStatus
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "жалоба не найдена")
		}
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "жалоба уже рассмотрена")
	}

	if err := s.repo.UpdateStatus(ctx, id, status, adminID); err != nil {
		return nil, err
	}
	report.Status = status
	report.ReviewedBy = &adminID

	if status == models.ReportStatusActionTaken && report.TargetType == models.ReportTargetUser {
		if err := s.users.SetBanned(ctx, report.TargetID, true); err != nil && logger.Log != nil {
			logger.Log.Errorf("report service: блокировка пользователя %s: %v", report.TargetID, err)
		}
	}

	link := "/reports"
	notif := &models.Notification{
		UserID:  report.ReporterID,
		Type:    models.NotificationTypeReport,
		Title:   "Жалоба рассмотрена",
		Message: "По вашей жалобе принято решение",
		Link:    &link,
	}
	if err := s.notifier.Create(ctx, notif); err != nil && logger.Log != nil {
		logger.Log.Warnf("report service: уведомление по жалобе: %v", err)
	}

	return report, nil
}
