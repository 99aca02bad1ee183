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

// ReturnRepository отвечает за заявки на возврат. Жизненный цикл устроен так
// же, как у заявок на одалживание, но завершение возврата делает вещь снова
// доступной.
type ReturnRepository struct {
	db *sqlx.DB
}

// NewReturnRepository создаёт новый экземпляр.
func NewReturnRepository(db *sqlx.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

const returnRequestColumns = `
	id, request_id, item_id, item_title, owner_id, requester_id, status,
	return_location, return_date, owner_confirmed, requester_confirmed,
	created_at, updated_at
`

// GetByID возвращает заявку на возврат по идентификатору.
func (r *ReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var ret models.ReturnRequest
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReturnNotFound
		}
		return nil, fmt.Errorf("return repository: get by id %w", err)
	}
	return &ret, nil
}

// GetByRequestID возвращает последний возврат по заявке на одалживание.
func (r *ReturnRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.ReturnRequest, error) {
	var ret models.ReturnRequest
	query := `
		SELECT ` + returnRequestColumns + `
		FROM return_requests
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &ret, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReturnNotFound
		}
		return nil, fmt.Errorf("return repository: get by request id %w", err)
	}
	return &ret, nil
}

// ListByUser возвращает возвраты, где пользователь — одна из сторон.
func (r *ReturnRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReturnRequest, error) {
	var returns []models.ReturnRequest
	query := `
		SELECT ` + returnRequestColumns + `
		FROM return_requests
		WHERE owner_id = $1 OR requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &returns, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("return repository: list by user %w", err)
	}
	return returns, nil
}

// ListPending возвращает нерассмотренные возвраты (для модерации).
func (r *ReturnRepository) ListPending(ctx context.Context, limit, offset int) ([]models.ReturnRequest, error) {
	var returns []models.ReturnRequest
	query := `
		SELECT ` + returnRequestColumns + `
		FROM return_requests
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &returns, query, models.RequestStatusPending, limit, offset); err != nil {
		return nil, fmt.Errorf("return repository: list pending %w", err)
	}
	return returns, nil
}

// Create сохраняет заявку на возврат и уведомления в одной транзакции.
// Частичный уникальный индекс не допускает второго активного возврата по
// одной заявке.
func (r *ReturnRepository) Create(ctx context.Context, ret *models.ReturnRequest, notifs []*models.Notification) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("return repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO return_requests (
			request_id, item_id, item_title, owner_id, requester_id, status,
			return_location, return_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		query,
		ret.RequestID,
		ret.ItemID,
		ret.ItemTitle,
		ret.OwnerID,
		ret.RequesterID,
		models.RequestStatusPending,
		ret.ReturnLocation,
		ret.ReturnDate,
	).Scan(&ret.ID, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			err = ErrActiveReturnExists
			return err
		}
		return fmt.Errorf("return repository: insert %w", err)
	}
	ret.Status = models.RequestStatusPending

	if err = insertNotificationsTx(ctx, tx, notifs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("return repository: commit %w", err)
	}
	return nil
}

// Resolve переводит возврат pending -> accepted|rejected. Статус вещи при
// этом не меняется: вещь остаётся у заявителя до подтверждения передачи.
func (r *ReturnRepository) Resolve(ctx context.Context, id uuid.UUID, newStatus string, notifs []*models.Notification) (ret *models.ReturnRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("return repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ret, err = lockReturnRequestTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransitionRequestStatus(ret.Status, newStatus) {
		err = ErrStatusConflict
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE return_requests SET status = $1, updated_at = NOW() WHERE id = $2`,
		newStatus, id,
	); err != nil {
		return nil, fmt.Errorf("return repository: update status %w", err)
	}
	ret.Status = newStatus

	if err = insertNotificationsTx(ctx, tx, notifs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("return repository: commit %w", err)
	}
	return ret, nil
}

// ConfirmReturn выставляет флаг подтверждения возврата стороной actor.
// Механика идентична подтверждению передачи; завершение возврата в той же
// транзакции возвращает вещи статус available.
func (r *ReturnRepository) ConfirmReturn(
	ctx context.Context,
	id uuid.UUID,
	actor models.Party,
	partialNotifs []*models.Notification,
	completedNotifs []*models.Notification,
) (outcome models.ConfirmOutcome, ret *models.ReturnRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("return repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ret, err = lockReturnRequestTx(ctx, tx, id)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	outcome, err = ret.ApplyReturnConfirmation(actor)
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	switch outcome {
	case models.ConfirmNoop:
		if err = tx.Commit(); err != nil {
			return models.ConfirmNoop, nil, fmt.Errorf("return repository: commit %w", err)
		}
		return outcome, ret, nil
	case models.ConfirmPartial:
		err = insertNotificationsTx(ctx, tx, partialNotifs)
	case models.ConfirmCompleted:
		if _, err = tx.ExecContext(ctx,
			`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.ItemStatusAvailable, ret.ItemID,
		); err != nil {
			return models.ConfirmNoop, nil, fmt.Errorf("return repository: update item status %w", err)
		}
		err = insertNotificationsTx(ctx, tx, completedNotifs)
	}
	if err != nil {
		return models.ConfirmNoop, nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE return_requests
		 SET status = $1, owner_confirmed = $2, requester_confirmed = $3, updated_at = NOW()
		 WHERE id = $4`,
		ret.Status, ret.OwnerConfirmed, ret.RequesterConfirmed, id,
	); err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("return repository: update confirmation %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.ConfirmNoop, nil, fmt.Errorf("return repository: commit %w", err)
	}
	return outcome, ret, nil
}

// lockReturnRequestTx читает возврат под блокировкой строки.
func lockReturnRequestTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.ReturnRequest, error) {
	var ret models.ReturnRequest
	query := `SELECT ` + returnRequestColumns + ` FROM return_requests WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReturnNotFound
		}
		return nil, fmt.Errorf("return repository: lock return %w", err)
	}
	return &ret, nil
}
