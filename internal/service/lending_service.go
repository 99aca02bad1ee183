package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/validation"
)

// BorrowRequestRepository описывает зависимости сервиса от хранилища заявок.
type BorrowRequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRequest, error)
	ListIncoming(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error)
	ListOutgoing(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.BorrowRequest, error)
	Create(ctx context.Context, req *models.BorrowRequest, notifs []*models.Notification) error
	Resolve(ctx context.Context, id uuid.UUID, newStatus string, notifs []*models.Notification, systemMessage string) (*models.BorrowRequest, error)
	ConfirmDelivery(ctx context.Context, id uuid.UUID, actor models.Party, partialNotifs, completedNotifs []*models.Notification, completedMessage string) (models.ConfirmOutcome, *models.BorrowRequest, error)
}

// ReturnRequestRepository описывает зависимости сервиса от хранилища возвратов.
type ReturnRequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.ReturnRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.ReturnRequest, error)
	Create(ctx context.Context, ret *models.ReturnRequest, notifs []*models.Notification) error
	Resolve(ctx context.Context, id uuid.UUID, newStatus string, notifs []*models.Notification) (*models.ReturnRequest, error)
	ConfirmReturn(ctx context.Context, id uuid.UUID, actor models.Party, partialNotifs, completedNotifs []*models.Notification) (models.ConfirmOutcome, *models.ReturnRequest, error)
}

// ItemReader даёт сервису доступ к вещам на чтение.
type ItemReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// LendingService реализует жизненный цикл одалживания: заявка, решение
// владельца, двустороннее подтверждение передачи, возврат и его
// подтверждение.
type LendingService struct {
	requests BorrowRequestRepository
	returns  ReturnRequestRepository
	items    ItemReader
}

// NewLendingService создаёт сервис одалживания.
func NewLendingService(requests BorrowRequestRepository, returns ReturnRequestRepository, items ItemReader) *LendingService {
	return &LendingService{
		requests: requests,
		returns:  returns,
		items:    items,
	}
}

// CreateRequestInput содержит данные новой заявки.
type CreateRequestInput struct {
	ItemID         uuid.UUID
	Message        string
	PickupLocation string
	PickupDate     *time.Time
}

// CreateReturnInput содержит данные заявки на возврат.
type CreateReturnInput struct {
	RequestID      uuid.UUID
	ReturnLocation string
	ReturnDate     *time.Time
}

// CreateRequest создаёт заявку на одалживание вещи. Владелец получает
// уведомление в той же транзакции, что и сама заявка. Гонку двух
// одновременных заявок на одну вещь разрешает уникальный индекс в базе.
func (s *LendingService) CreateRequest(ctx context.Context, requesterID uuid.UUID, in CreateRequestInput) (*models.BorrowRequest, error) {
	if err := validation.ValidateRequestMessage(in.Message); err != nil {
		return nil, fmt.Errorf("lending service: %w", err)
	}
	if err := validation.ValidateLocation(in.PickupLocation); err != nil {
		return nil, fmt.Errorf("lending service: %w", err)
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, err
	}

	if item.IsOwnedBy(requesterID) {
		return nil, apperror.ErrOwnRequestForbidden
	}
	if item.Status != models.ItemStatusAvailable {
		return nil, apperror.ErrItemNotAvailable
	}

	req := &models.BorrowRequest{
		ItemID:              item.ID,
		ItemTitle:           item.Title,
		OwnerID:             item.OwnerID,
		RequesterID:         requesterID,
		Message:             in.Message,
		PickupLocation:      in.PickupLocation,
		PickupDate:          in.PickupDate,
		IsUnlimitedDuration: item.UnlimitedDuration,
	}

	notifs := []*models.Notification{
		notifyUser(item.OwnerID, models.NotificationTypeRequest,
			"Новая заявка",
			fmt.Sprintf("Вашу вещь «%s» хотят одолжить", item.Title),
			"/requests/incoming"),
	}

	if err := s.requests.Create(ctx, req, notifs); err != nil {
		if errors.Is(err, repository.ErrActiveRequestExists) {
			return nil, apperror.ErrActiveRequestExists
		}
		return nil, err
	}

	return req, nil
}

// GetRequest возвращает заявку; доступ есть только у сторон сделки и админа.
func (s *LendingService) GetRequest(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.BorrowRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}
	if !req.IsParticipant(userID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return req, nil
}

// ListIncoming возвращает заявки на вещи пользователя.
func (s *LendingService) ListIncoming(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.requests.ListIncoming(ctx, ownerID, limit, offset)
}

// ListOutgoing возвращает заявки, поданные пользователем.
func (s *LendingService) ListOutgoing(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.requests.ListOutgoing(ctx, requesterID, limit, offset)
}

// ListPendingRequests возвращает нерассмотренные заявки (для админки).
func (s *LendingService) ListPendingRequests(ctx context.Context, limit, offset int) ([]models.BorrowRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.requests.ListPending(ctx, limit, offset)
}

// ApproveRequest принимает заявку. Вещь помечается занятой в той же
// транзакции, что и смена статуса заявки.
func (s *LendingService) ApproveRequest(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.BorrowRequest, error) {
	req, err := s.loadOwnedRequest(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	notifs := []*models.Notification{
		notifyUser(req.RequesterID, models.NotificationTypeRequest,
			"Заявка принята",
			fmt.Sprintf("Владелец согласился одолжить вам «%s». Договоритесь о передаче.", req.ItemTitle),
			"/requests/outgoing"),
		notifyUser(req.OwnerID, models.NotificationTypeRequest,
			"Заявка принята",
			fmt.Sprintf("Заявка на «%s» принята, вещь помечена занятой", req.ItemTitle),
			"/requests/incoming"),
	}

	resolved, err := s.requests.Resolve(ctx, id, models.RequestStatusAccepted, notifs,
		"Заявка принята владельцем. Подтвердите передачу вещи, когда она состоится.")
	if err != nil {
		return nil, mapResolveError(err)
	}
	return resolved, nil
}

// RejectRequest отклоняет заявку. Статус вещи не меняется.
func (s *LendingService) RejectRequest(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.BorrowRequest, error) {
	req, err := s.loadOwnedRequest(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	notifs := []*models.Notification{
		notifyUser(req.RequesterID, models.NotificationTypeRequest,
			"Заявка отклонена",
			fmt.Sprintf("Владелец отклонил вашу заявку на «%s»", req.ItemTitle),
			"/requests/outgoing"),
		notifyUser(req.OwnerID, models.NotificationTypeRequest,
			"Заявка отклонена",
			fmt.Sprintf("Заявка на «%s» отклонена", req.ItemTitle),
			"/requests/incoming"),
	}

	resolved, err := s.requests.Resolve(ctx, id, models.RequestStatusRejected, notifs, "Заявка отклонена владельцем.")
	if err != nil {
		return nil, mapResolveError(err)
	}
	return resolved, nil
}

// ConfirmDelivery фиксирует подтверждение передачи вещи одной из сторон.
// Когда подтверждают обе стороны, заявка завершается ровно один раз, а обе
// стороны получают уведомления; повторное подтверждение той же стороны
// ничего не меняет.
func (s *LendingService) ConfirmDelivery(ctx context.Context, id, actorID uuid.UUID) (models.ConfirmOutcome, *models.BorrowRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return models.ConfirmNoop, nil, apperror.ErrRequestNotFound
		}
		return models.ConfirmNoop, nil, err
	}

	actor, err := partyOf(req.OwnerID, req.RequesterID, actorID)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	other := req.RequesterID
	if actor == models.PartyRequester {
		other = req.OwnerID
	}

	partial := []*models.Notification{
		notifyUser(other, models.NotificationTypeRequest,
			"Передача подтверждена",
			fmt.Sprintf("Вторая сторона подтвердила передачу «%s». Подтвердите и вы.", req.ItemTitle),
			"/requests"),
	}
	completed := []*models.Notification{
		notifyUser(req.OwnerID, models.NotificationTypeSystem,
			"Передача состоялась",
			fmt.Sprintf("Передача «%s» подтверждена обеими сторонами", req.ItemTitle),
			"/requests/incoming"),
		notifyUser(req.RequesterID, models.NotificationTypeSystem,
			"Передача состоялась",
			fmt.Sprintf("Передача «%s» подтверждена обеими сторонами", req.ItemTitle),
			"/requests/outgoing"),
	}

	outcome, updated, err := s.requests.ConfirmDelivery(ctx, id, actor, partial, completed,
		"Передача вещи подтверждена обеими сторонами.")
	if err != nil {
		if errors.Is(err, models.ErrConfirmNotAccepted) {
			return models.ConfirmNoop, nil, apperror.ErrRequestNotAccepted
		}
		return models.ConfirmNoop, nil, err
	}
	return outcome, updated, nil
}

// CreateReturn открывает заявку на возврат по принятой заявке на
// одалживание. Открыть возврат может любая из сторон сделки; второй
// активный возврат по той же заявке не допускается.
func (s *LendingService) CreateReturn(ctx context.Context, actorID uuid.UUID, in CreateReturnInput) (*models.ReturnRequest, error) {
	if err := validation.ValidateLocation(in.ReturnLocation); err != nil {
		return nil, fmt.Errorf("lending service: %w", err)
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}
	if !req.IsParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}
	if req.Status != models.RequestStatusAccepted && req.Status != models.RequestStatusCompleted {
		return nil, apperror.ErrRequestNotAccepted
	}

	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, err
	}
	if item.Status != models.ItemStatusBorrowed {
		return nil, apperror.ErrItemNotBorrowed
	}

	ret := &models.ReturnRequest{
		RequestID:      req.ID,
		ItemID:         req.ItemID,
		ItemTitle:      req.ItemTitle,
		OwnerID:        req.OwnerID,
		RequesterID:    req.RequesterID,
		ReturnLocation: in.ReturnLocation,
		ReturnDate:     in.ReturnDate,
	}

	other := req.OwnerID
	if actorID == req.OwnerID {
		other = req.RequesterID
	}
	notifs := []*models.Notification{
		notifyUser(other, models.NotificationTypeReturn,
			"Заявка на возврат",
			fmt.Sprintf("По вещи «%s» открыт возврат", req.ItemTitle),
			"/returns"),
	}

	if err := s.returns.Create(ctx, ret, notifs); err != nil {
		if errors.Is(err, repository.ErrActiveReturnExists) {
			return nil, apperror.ErrActiveReturnExists
		}
		return nil, err
	}
	return ret, nil
}

// GetReturn возвращает заявку на возврат с проверкой доступа.
func (s *LendingService) GetReturn(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.ReturnRequest, error) {
	ret, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, apperror.ErrReturnNotFound
		}
		return nil, err
	}
	if !ret.IsParticipant(userID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return ret, nil
}

// GetReturnForRequest возвращает последний возврат по заявке на одалживание.
func (s *LendingService) GetReturnForRequest(ctx context.Context, requestID, userID uuid.UUID, isAdmin bool) (*models.ReturnRequest, error) {
	ret, err := s.returns.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, apperror.ErrReturnNotFound
		}
		return nil, err
	}
	if !ret.IsParticipant(userID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return ret, nil
}

// ListMyReturns возвращает возвраты, где пользователь — одна из сторон.
func (s *LendingService) ListMyReturns(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.returns.ListByUser(ctx, userID, limit, offset)
}

// ListPendingReturns возвращает нерассмотренные возвраты (для админки).
func (s *LendingService) ListPendingReturns(ctx context.Context, limit, offset int) ([]models.ReturnRequest, error) {
	limit, offset = clampPage(limit, offset)
	return s.returns.ListPending(ctx, limit, offset)
}

// ApproveReturn принимает заявку на возврат. Вещь остаётся у заявителя до
// двустороннего подтверждения передачи обратно.
func (s *LendingService) ApproveReturn(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.ReturnRequest, error) {
	ret, err := s.loadOwnedReturn(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	notifs := []*models.Notification{
		notifyUser(ret.RequesterID, models.NotificationTypeReturn,
			"Возврат согласован",
			fmt.Sprintf("Владелец согласовал возврат «%s». Подтвердите передачу после встречи.", ret.ItemTitle),
			"/returns"),
		notifyUser(ret.OwnerID, models.NotificationTypeReturn,
			"Возврат согласован",
			fmt.Sprintf("Возврат «%s» согласован, дождитесь двустороннего подтверждения", ret.ItemTitle),
			"/returns"),
	}

	resolved, err := s.returns.Resolve(ctx, id, models.RequestStatusAccepted, notifs)
	if err != nil {
		return nil, mapResolveError(err)
	}
	return resolved, nil
}

// RejectReturn отклоняет заявку на возврат.
func (s *LendingService) RejectReturn(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.ReturnRequest, error) {
	ret, err := s.loadOwnedReturn(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	notifs := []*models.Notification{
		notifyUser(ret.RequesterID, models.NotificationTypeReturn,
			"Возврат отклонён",
			fmt.Sprintf("Владелец отклонил возврат «%s»", ret.ItemTitle),
			"/returns"),
		notifyUser(ret.OwnerID, models.NotificationTypeReturn,
			"Возврат отклонён",
			fmt.Sprintf("Возврат «%s» отклонён", ret.ItemTitle),
			"/returns"),
	}

	resolved, err := s.returns.Resolve(ctx, id, models.RequestStatusRejected, notifs)
	if err != nil {
		return nil, mapResolveError(err)
	}
	return resolved, nil
}

// ConfirmReturn фиксирует подтверждение возврата одной из сторон. После
// подтверждения обеими сторонами вещь снова становится доступной.
func (s *LendingService) ConfirmReturn(ctx context.Context, id, actorID uuid.UUID) (models.ConfirmOutcome, *models.ReturnRequest, error) {
	ret, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return models.ConfirmNoop, nil, apperror.ErrReturnNotFound
		}
		return models.ConfirmNoop, nil, err
	}

	actor, err := partyOf(ret.OwnerID, ret.RequesterID, actorID)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	other := ret.RequesterID
	if actor == models.PartyRequester {
		other = ret.OwnerID
	}

	partial := []*models.Notification{
		notifyUser(other, models.NotificationTypeReturn,
			"Возврат подтверждён",
			fmt.Sprintf("Вторая сторона подтвердила возврат «%s». Подтвердите и вы.", ret.ItemTitle),
			"/returns"),
	}
	completed := []*models.Notification{
		notifyUser(ret.OwnerID, models.NotificationTypeSystem,
			"Возврат завершён",
			fmt.Sprintf("Возврат «%s» подтверждён обеими сторонами, вещь снова доступна", ret.ItemTitle),
			"/items"),
		notifyUser(ret.RequesterID, models.NotificationTypeSystem,
			"Возврат завершён",
			fmt.Sprintf("Возврат «%s» подтверждён обеими сторонами", ret.ItemTitle),
			"/returns"),
	}

	outcome, updated, err := s.returns.ConfirmReturn(ctx, id, actor, partial, completed)
	if err != nil {
		if errors.Is(err, models.ErrConfirmNotAccepted) {
			return models.ConfirmNoop, nil, apperror.ErrRequestNotAccepted
		}
		return models.ConfirmNoop, nil, err
	}
	return outcome, updated, nil
}

// loadOwnedRequest читает заявку и проверяет право рассматривать её.
func (s *LendingService) loadOwnedRequest(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.BorrowRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}
	if req.OwnerID != actorID && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return req, nil
}

// loadOwnedReturn читает возврат и проверяет право рассматривать его.
func (s *LendingService) loadOwnedReturn(ctx context.Context, id, actorID uuid.UUID, isAdmin bool) (*models.ReturnRequest, error) {
	ret, err := s.returns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReturnNotFound) {
			return nil, apperror.ErrReturnNotFound
		}
		return nil, err
	}
	if ret.OwnerID != actorID && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return ret, nil
}

// partyOf определяет сторону сделки по идентификатору пользователя.
func partyOf(ownerID, requesterID, userID uuid.UUID) (models.Party, error) {
	switch userID {
	case ownerID:
		return models.PartyOwner, nil
	case requesterID:
		return models.PartyRequester, nil
	default:
		return "", apperror.ErrForbidden
	}
}

// mapResolveError переводит ошибки хранилища в доменные.
func mapResolveError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return apperror.ErrRequestNotFound
	case errors.Is(err, repository.ErrReturnNotFound):
		return apperror.ErrReturnNotFound
	case errors.Is(err, repository.ErrStatusConflict):
		return apperror.ErrRequestNotPending
	default:
		return err
	}
}

// notifyUser собирает уведомление для записи в рамках транзакции.
func notifyUser(userID uuid.UUID, notifType, title, message, link string) *models.Notification {
	return &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Link:    &link,
	}
}

// clampPage нормализует параметры пагинации.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
