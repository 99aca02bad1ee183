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

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *mockItemRepo) List(ctx context.Context, params repository.ItemListParams) (*repository.ItemListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ItemListResult), args.Error(1)
}

func (m *mockItemRepo) Create(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) error {
	args := m.Called(ctx, item, imageIDs)
	if args.Error(0) == nil {
		item.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockItemRepo) Update(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) error {
	args := m.Called(ctx, item, imageIDs)
	return args.Error(0)
}

func (m *mockItemRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockItemRepo) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockItemRepo) HasActiveRequest(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func validItemInput() ItemInput {
	days := 14
	return ItemInput{
		Title:        "Перфоратор Bosch",
		Description:  "Почти новый, отдаю с кейсом",
		Category:     "tools",
		Location:     "Москва",
		DurationDays: &days,
	}
}

func TestItemService_CreateItem_Success(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	repo.On("Create", ctx, mock.AnythingOfType("*models.Item"), mock.Anything).Return(nil)

	item, err := svc.CreateItem(ctx, ownerID, validItemInput())

	assert.NoError(t, err)
	assert.Equal(t, ownerID, item.OwnerID)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)
}

func TestItemService_CreateItem_InvalidTitle(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	in := validItemInput()
	in.Title = ""

	_, err := svc.CreateItem(context.Background(), uuid.New(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "название")
}

func TestItemService_CreateItem_UnlimitedWithDays(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	in := validItemInput()
	in.UnlimitedDuration = true

	_, err := svc.CreateItem(context.Background(), uuid.New(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "бессрочное")
}

func TestItemService_CreateItem_MissingDuration(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	in := validItemInput()
	in.DurationDays = nil

	_, err := svc.CreateItem(context.Background(), uuid.New(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "срок одалживания")
}

func TestItemService_ListItems_UnknownStatus(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	_, err := svc.ListItems(context.Background(), repository.ItemListParams{Status: "broken"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный статус")
}

func TestItemService_UpdateItem_NotOwner(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: uuid.New(),
		Status:  models.ItemStatusAvailable,
	}, nil)

	_, err := svc.UpdateItem(ctx, itemID, uuid.New(), validItemInput())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestItemService_SetItemStatus_BorrowedLocked(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: ownerID,
		Status:  models.ItemStatusBorrowed,
	}, nil)

	_, err := svc.SetItemStatus(ctx, itemID, ownerID, false, models.ItemStatusUnavailable)
	assert.ErrorIs(t, err, apperror.ErrItemNotAvailable)
}

func TestItemService_SetItemStatus_RejectsBorrowed(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	// Владелец не может выставить borrowed руками.
	_, err := svc.SetItemStatus(context.Background(), uuid.New(), uuid.New(), false, models.ItemStatusBorrowed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "available или unavailable")
}

func TestItemService_SetItemStatus_Success(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: ownerID,
		Status:  models.ItemStatusAvailable,
	}, nil)
	repo.On("UpdateStatus", ctx, itemID, models.ItemStatusUnavailable).Return(nil)

	item, err := svc.SetItemStatus(ctx, itemID, ownerID, false, models.ItemStatusUnavailable)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusUnavailable, item.Status)
}

func TestItemService_SetItemStatus_StrangerForbidden(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: uuid.New(),
		Status:  models.ItemStatusAvailable,
	}, nil)

	_, err := svc.SetItemStatus(ctx, itemID, uuid.New(), false, models.ItemStatusUnavailable)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestItemService_SetItemStatus_AdminOverride(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: uuid.New(),
		Status:  models.ItemStatusAvailable,
	}, nil)
	repo.On("UpdateStatus", ctx, itemID, models.ItemStatusUnavailable).Return(nil)

	// Админ снимает вещь с публикации, не являясь владельцем.
	item, err := svc.SetItemStatus(ctx, itemID, uuid.New(), true, models.ItemStatusUnavailable)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusUnavailable, item.Status)
}

func TestItemService_DeleteItem_ActiveRequest(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: ownerID,
		Status:  models.ItemStatusAvailable,
	}, nil)
	repo.On("HasActiveRequest", ctx, itemID).Return(true, nil)

	err := svc.DeleteItem(ctx, itemID, ownerID)
	assert.ErrorIs(t, err, apperror.ErrActiveRequestExists)
}

func TestItemService_DeleteItem_Success(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()
	repo.On("GetByID", ctx, itemID).Return(&models.Item{
		ID:      itemID,
		OwnerID: ownerID,
		Status:  models.ItemStatusAvailable,
	}, nil)
	repo.On("HasActiveRequest", ctx, itemID).Return(false, nil)
	repo.On("Delete", ctx, itemID, ownerID).Return(nil)

	err := svc.DeleteItem(ctx, itemID, ownerID)
	assert.NoError(t, err)
	repo.AssertCalled(t, "Delete", ctx, itemID, ownerID)
}
