package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/validation"
)

// ItemRepository описывает зависимости сервиса вещей от хранилища.
type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, params repository.ItemListParams) (*repository.ItemListResult, error)
	Create(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) error
	Update(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	HasActiveRequest(ctx context.Context, itemID uuid.UUID) (bool, error)
}

// ItemService содержит бизнес-логику каталога вещей.
type ItemService struct {
	repo ItemRepository
}

// NewItemService создаёт сервис вещей.
func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// ItemInput содержит данные вещи при создании и обновлении.
type ItemInput struct {
	Title             string
	Description       string
	Category          string
	Location          string
	UnlimitedDuration bool
	DurationDays      *int
	Conditions        *string
	ImageIDs          []uuid.UUID
}

func validateItemInput(in ItemInput) error {
	if err := validation.ValidateItemTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateItemDescription(in.Description); err != nil {
		return err
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return err
	}
	if err := validation.ValidateLocation(in.Location); err != nil {
		return err
	}
	if err := validation.ValidateDuration(in.UnlimitedDuration, in.DurationDays); err != nil {
		return err
	}
	if err := validation.ValidateConditions(in.Conditions); err != nil {
		return err
	}
	return validation.ValidateImageCount(len(in.ImageIDs))
}

// CreateItem публикует новую вещь владельца.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, in ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, fmt.Errorf("item service: %w", err)
	}

	item := &models.Item{
		OwnerID:           ownerID,
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		Location:          in.Location,
		Status:            models.ItemStatusAvailable,
		UnlimitedDuration: in.UnlimitedDuration,
		DurationDays:      in.DurationDays,
		Conditions:        in.Conditions,
	}

	if err := s.repo.Create(ctx, item, in.ImageIDs); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem возвращает вещь с изображениями и именем владельца.
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListItems возвращает страницу каталога по фильтрам.
func (s *ItemService) ListItems(ctx context.Context, params repository.ItemListParams) (*repository.ItemListResult, error) {
	params.Limit, params.Offset = clampPage(params.Limit, params.Offset)
	if params.Status != "" {
		if _, ok := models.ValidItemStatuses[params.Status]; !ok {
			return nil, fmt.Errorf("item service: неизвестный статус вещи")
		}
	}
	return s.repo.List(ctx, params)
}

// UpdateItem обновляет данные вещи. Редактировать может только владелец.
func (s *ItemService) UpdateItem(ctx context.Context, id, ownerID uuid.UUID, in ItemInput) (*models.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, fmt.Errorf("item service: %w", err)
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(ownerID) {
		return nil, apperror.ErrForbidden
	}

	item.Title = in.Title
	item.Description = in.Description
	item.Category = in.Category
	item.Location = in.Location
	item.UnlimitedDuration = in.UnlimitedDuration
	item.DurationDays = in.DurationDays
	item.Conditions = in.Conditions

	if err := s.repo.Update(ctx, item, in.ImageIDs); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// SetItemStatus переключает видимость вещи владельцем или админом:
// available <-> unavailable. Статус borrowed выставляет только жизненный цикл
// заявок, пока вещь занята статус вручную не переключается.
func (s *ItemService) SetItemStatus(ctx context.Context, id, actorID uuid.UUID, isAdmin bool, status string) (*models.Item, error) {
	if status != models.ItemStatusAvailable && status != models.ItemStatusUnavailable {
		return nil, fmt.Errorf("item service: статус можно сменить только на available или unavailable")
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(actorID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	if item.Status == models.ItemStatusBorrowed {
		return nil, apperror.ErrItemNotAvailable
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	item.Status = status
	return item, nil
}

// DeleteItem удаляет вещь владельца. Вещь с активной заявкой удалить нельзя.
func (s *ItemService) DeleteItem(ctx context.Context, id, ownerID uuid.UUID) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if !item.IsOwnedBy(ownerID) {
		return apperror.ErrForbidden
	}

	active, err := s.repo.HasActiveRequest(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return apperror.ErrActiveRequestExists
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return apperror.ErrItemNotFound
		}
		return err
	}
	return nil
}
