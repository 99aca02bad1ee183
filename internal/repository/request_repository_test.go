package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock
}

type borrowRow struct {
	id, itemID, ownerID, requesterID uuid.UUID
	conversationID                   uuid.UUID
	status                           string
	ownerConfirmed                   bool
	requesterConfirmed               bool
}

func borrowRequestRows(r borrowRow) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "item_id", "item_title", "owner_id", "requester_id", "status",
		"message", "pickup_location", "pickup_date", "conversation_id",
		"owner_confirmed", "requester_confirmed", "is_unlimited_duration",
		"created_at", "updated_at",
	}).AddRow(
		r.id.String(), r.itemID.String(), "Дрель", r.ownerID.String(),
		r.requesterID.String(), r.status, "Одолжите на выходные", "м. Тульская",
		nil, r.conversationID.String(), r.ownerConfirmed, r.requesterConfirmed,
		false, now, now,
	)
}

func TestRequestRepository_Resolve_AcceptMarksItemBorrowed(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewRequestRepository(db)
	ctx := context.Background()

	row := borrowRow{
		id:             uuid.New(),
		itemID:         uuid.New(),
		ownerID:        uuid.New(),
		requesterID:    uuid.New(),
		conversationID: uuid.New(),
		status:         models.RequestStatusPending,
	}
	notifs := []*models.Notification{
		{UserID: row.requesterID, Type: models.NotificationTypeRequest, Title: "Заявка принята", Message: "м"},
		{UserID: row.ownerID, Type: models.NotificationTypeRequest, Title: "Заявка принята", Message: "м"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrow_requests WHERE .+ FOR UPDATE").
		WillReturnRows(borrowRequestRows(row))
	mock.ExpectExec("UPDATE borrow_requests SET status").
		WithArgs(models.RequestStatusAccepted, row.id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Вещь помечается занятой в той же транзакции, что и принятие заявки.
	mock.ExpectExec("UPDATE items SET status").
		WithArgs(models.ItemStatusBorrowed, row.itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range notifs {
		mock.ExpectQuery("INSERT INTO notifications").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(uuid.New().String(), time.Now()))
	}
	mock.ExpectCommit()

	resolved, err := repo.Resolve(ctx, row.id, models.RequestStatusAccepted, notifs, "Заявка принята владельцем.")

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, resolved.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Resolve_RejectLeavesItemUntouched(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewRequestRepository(db)
	ctx := context.Background()

	row := borrowRow{
		id:             uuid.New(),
		itemID:         uuid.New(),
		ownerID:        uuid.New(),
		requesterID:    uuid.New(),
		conversationID: uuid.New(),
		status:         models.RequestStatusPending,
	}
	notifs := []*models.Notification{
		{UserID: row.requesterID, Type: models.NotificationTypeRequest, Title: "Заявка отклонена", Message: "м"},
	}

	// UPDATE items здесь не ожидается: отклонение не трогает статус вещи,
	// любое лишнее обращение провалит проверку ожиданий.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrow_requests WHERE .+ FOR UPDATE").
		WillReturnRows(borrowRequestRows(row))
	mock.ExpectExec("UPDATE borrow_requests SET status").
		WithArgs(models.RequestStatusRejected, row.id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO notifications").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.New().String(), time.Now()))
	mock.ExpectCommit()

	resolved, err := repo.Resolve(ctx, row.id, models.RequestStatusRejected, notifs, "Заявка отклонена владельцем.")

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, resolved.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Resolve_StatusConflict(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewRequestRepository(db)
	ctx := context.Background()

	row := borrowRow{
		id:             uuid.New(),
		itemID:         uuid.New(),
		ownerID:        uuid.New(),
		requesterID:    uuid.New(),
		conversationID: uuid.New(),
		status:         models.RequestStatusRejected,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrow_requests WHERE .+ FOR UPDATE").
		WillReturnRows(borrowRequestRows(row))
	mock.ExpectRollback()

	_, err := repo.Resolve(ctx, row.id, models.RequestStatusAccepted, nil, "")

	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ConfirmDelivery_RepeatWritesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewRequestRepository(db)
	ctx := context.Background()

	row := borrowRow{
		id:             uuid.New(),
		itemID:         uuid.New(),
		ownerID:        uuid.New(),
		requesterID:    uuid.New(),
		conversationID: uuid.New(),
		status:         models.RequestStatusAccepted,
		ownerConfirmed: true,
	}

	// Повторное подтверждение той же стороны: только чтение под блокировкой и
	// коммит, без обновлений и уведомлений.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrow_requests WHERE .+ FOR UPDATE").
		WillReturnRows(borrowRequestRows(row))
	mock.ExpectCommit()

	outcome, _, err := repo.ConfirmDelivery(ctx, row.id, models.PartyOwner, nil, nil, "")

	assert.NoError(t, err)
	assert.Equal(t, models.ConfirmNoop, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ConfirmDelivery_SecondPartyCompletes(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewRequestRepository(db)
	ctx := context.Background()

	row := borrowRow{
		id:             uuid.New(),
		itemID:         uuid.New(),
		ownerID:        uuid.New(),
		requesterID:    uuid.New(),
		conversationID: uuid.New(),
		status:         models.RequestStatusAccepted,
		ownerConfirmed: true,
	}
	completed := []*models.Notification{
		{UserID: row.ownerID, Type: models.NotificationTypeSystem, Title: "Передача состоялась", Message: "м"},
		{UserID: row.requesterID, Type: models.NotificationTypeSystem, Title: "Передача состоялась", Message: "м"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrow_requests WHERE .+ FOR UPDATE").
		WillReturnRows(borrowRequestRows(row))
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range completed {
		mock.ExpectQuery("INSERT INTO notifications").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(uuid.New().String(), time.Now()))
	}
	mock.ExpectExec("UPDATE borrow_requests").
		WithArgs(models.RequestStatusCompleted, true, true, row.id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, req, err := repo.ConfirmDelivery(ctx, row.id, models.PartyRequester, nil, completed,
		"Передача вещи подтверждена обеими сторонами.")

	assert.NoError(t, err)
	assert.Equal(t, models.ConfirmCompleted, outcome)
	assert.Equal(t, models.RequestStatusCompleted, req.Status)
	assert.True(t, req.OwnerConfirmed)
	assert.True(t, req.RequesterConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
