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

// Ошибки уровня репозитория.
var (
	ErrItemNotFound         = errors.New("item not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrReturnNotFound       = errors.New("return request not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrActiveRequestExists  = errors.New("active request for item already exists")
	ErrActiveReturnExists   = errors.New("active return request already exists")
	ErrStatusConflict       = errors.New("request status conflict")
)

// pqUniqueViolation код ошибки PostgreSQL для нарушения уникальности.
const pqUniqueViolation = "23505"

// RequestRepository отвечает за заявки на одалживание и их жизненный цикл.
// Все переходы статусов выполняются в одной транзакции с блокировкой строки
// заявки (SELECT ... FOR UPDATE), обновлением статуса вещи и записью
// уведомлений в outbox.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const borrowRequestColumns = `
	id, item_id, item_title, owner_id, requester_id, status, message,
	pickup_location, pickup_date, conversation_id, owner_confirmed,
	requester_confirmed, is_unlimited_duration, created_at, updated_at
`

// GetByID возвращает заявку по идентификатору.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id %w", err)
	}
	return &req, nil
}

// ListIncoming возвращает заявки на вещи владельца.
func (r *RequestRepository) ListIncoming(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error) {
	var requests []models.BorrowRequest
	query := `
		SELECT ` + borrowRequestColumns + `
		FROM borrow_requests
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &requests, query, ownerID, limit, offset); err != nil {
		return nil, fmt.Errorf("request repository: list incoming %w", err)
	}
	return requests, nil
}

// ListOutgoing возвращает заявки, созданные пользователем.
func (r *RequestRepository) ListOutgoing(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]models.BorrowRequest, error) {
	var requests []models.BorrowRequest
	query := `
		SELECT ` + borrowRequestColumns + `
		FROM borrow_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &requests, query, requesterID, limit, offset); err != nil {
		return nil, fmt.Errorf("request repository: list outgoing %w", err)
	}
	return requests, nil
}

// ListPending возвращает нерассмотренные заявки (для модерации).
func (r *RequestRepository) ListPending(ctx context.Context, limit, offset int) ([]models.BorrowRequest, error) {
	var requests []models.BorrowRequest
	query := `
		SELECT ` + borrowRequestColumns + `
		FROM borrow_requests
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &requests, query, models.RequestStatusPending, limit, offset); err != nil {
		return nil, fmt.Errorf("request repository: list pending %w", err)
	}
	return requests, nil
}

// Create сохраняет заявку вместе с диалогом, первым сообщением и
// уведомлением владельцу в одной транзакции. Частичный уникальный индекс
// по item_id гарантирует не более одной активной заявки на вещь.
func (r *RequestRepository) Create(ctx context.Context, req *models.BorrowRequest, notifs []*models.Notification) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	conv := &models.Conversation{
		OwnerID:     req.OwnerID,
		RequesterID: req.RequesterID,
	}
	convQuery := `
		INSERT INTO conversations (owner_id, requester_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err = tx.QueryRowxContext(ctx, convQuery, conv.OwnerID, conv.RequesterID).
		Scan(&conv.ID, &conv.CreatedAt); err != nil {
		return fmt.Errorf("request repository: insert conversation %w", err)
	}
	req.ConversationID = &conv.ID

	query := `
		INSERT INTO borrow_requests (
			item_id, item_title, owner_id, requester_id, status, message,
			pickup_location, pickup_date, conversation_id, is_unlimited_duration
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		query,
		req.ItemID,
		req.ItemTitle,
		req.OwnerID,
		req.RequesterID,
		models.RequestStatusPending,
		req.Message,
		req.PickupLocation,
		req.PickupDate,
		req.ConversationID,
		req.IsUnlimitedDuration,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			err = ErrActiveRequestExists
			return err
		}
		return fmt.Errorf("request repository: insert request %w", err)
	}
	req.Status = models.RequestStatusPending

	// Привязываем диалог к заявке и сохраняем первое сообщение.
	if _, err = tx.ExecContext(ctx, `UPDATE conversations SET request_id = $1 WHERE id = $2`, req.ID, conv.ID); err != nil {
		return fmt.Errorf("request repository: bind conversation %w", err)
	}
	if req.Message != "" {
		if err = insertMessageTx(ctx, tx, conv.ID, models.MessageAuthorUser, &req.RequesterID, req.Message); err != nil {
			return err
		}
	}

	if err = insertNotificationsTx(ctx, tx, notifs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}
	return nil
}

// Resolve переводит заявку pending -> accepted|rejected. Принятие заявки в той
// же транзакции помечает вещь как взятую (borrowed), отклонение статус вещи не
// трогает.
func (r *RequestRepository) Resolve(ctx context.Context, id uuid.UUID, newStatus string, notifs []*models.Notification, systemMessage string) (req *models.BorrowRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	req, err = lockBorrowRequestTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransitionRequestStatus(req.Status, newStatus) {
		err = ErrStatusConflict
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE borrow_requests SET status = $1, updated_at = NOW() WHERE id = $2`,
		newStatus, id,
	); err != nil {
		return nil, fmt.Errorf("request repository: update status %w", err)
	}
	req.Status = newStatus

	if newStatus == models.RequestStatusAccepted {
		// Вещь могла быть удалена владельцем; нулевое число строк допустимо.
		if _, err = tx.ExecContext(ctx,
			`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.ItemStatusBorrowed, req.ItemID,
		); err != nil {
			return nil, fmt.Errorf("request repository: update item status %w", err)
		}
	}

	if systemMessage != "" && req.ConversationID != nil {
		if err = insertMessageTx(ctx, tx, *req.ConversationID, models.MessageAuthorSystem, nil, systemMessage); err != nil {
			return nil, err
		}
	}

	if err = insertNotificationsTx(ctx, tx, notifs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("request repository: commit %w", err)
	}
	return req, nil
}

// ConfirmDelivery выставляет флаг подтверждения передачи стороной actor.
// Чтение текущих флагов, решение о завершении и запись выполняются в одной
// транзакции под блокировкой строки, поэтому одновременные подтверждения двух
// сторон не приводят к двойному завершению и двойным уведомлениям.
// Уведомления partialNotifs пишутся если подтвердила только одна сторона,
// completedNotifs — если заявка завершилась этим подтверждением.
func (r *RequestRepository) ConfirmDelivery(
	ctx context.Context,
	id uuid.UUID,
	actor models.Party,
	partialNotifs []*models.Notification,
	completedNotifs []*models.Notification,
	completedMessage string,
) (outcome models.ConfirmOutcome, req *models.BorrowRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	req, err = lockBorrowRequestTx(ctx, tx, id)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	outcome, err = req.ApplyDeliveryConfirmation(actor)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	switch outcome {
	case models.ConfirmNoop:
		// Повторное подтверждение той же стороны: ничего не пишем.
		if err = tx.Commit(); err != nil {
			return models.ConfirmNoop, nil, fmt.Errorf("request repository: commit %w", err)
		}
		return outcome, req, nil
	case models.ConfirmPartial:
		err = insertNotificationsTx(ctx, tx, partialNotifs)
	case models.ConfirmCompleted:
		if completedMessage != "" && req.ConversationID != nil {
			if err = insertMessageTx(ctx, tx, *req.ConversationID, models.MessageAuthorSystem, nil, completedMessage); err != nil {
				return models.ConfirmNoop, nil, err
			}
		}
		err = insertNotificationsTx(ctx, tx, completedNotifs)
	}
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE borrow_requests
		 SET status = $1, owner_confirmed = $2, requester_confirmed = $3, updated_at = NOW()
		 WHERE id = $4`,
		req.Status, req.OwnerConfirmed, req.RequesterConfirmed, id,
	); err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("request repository: update confirmation %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("request repository: commit %w", err)
	}
	return outcome, req, nil
}

// lockBorrowRequestTx читает заявку под блокировкой строки.
func lockBorrowRequestTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: lock request %w", err)
	}
	return &req, nil
}

// insertNotificationsTx пишет уведомления в outbox внутри транзакции перехода.
func insertNotificationsTx(ctx context.Context, tx *sqlx.Tx, notifs []*models.Notification) error {
	for _, n := range notifs {
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO notifications (user_id, type, title, message, link)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			n.UserID, n.Type, n.Title, n.Message, n.Link,
		).Scan(&n.ID, &n.CreatedAt); err != nil {
			return fmt.Errorf("request repository: insert notification %w", err)
		}
	}
	return nil
}

// insertMessageTx пишет сообщение в диалог внутри транзакции перехода.
func insertMessageTx(ctx context.Context, tx *sqlx.Tx, conversationID uuid.UUID, authorType string, authorID *uuid.UUID, content string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, author_type, author_id, content)
		 VALUES ($1, $2, $3, $4)`,
		conversationID, authorType, authorID, content,
	); err != nil {
		return fmt.Errorf("request repository: insert message %w", err)
	}
	return nil
}
