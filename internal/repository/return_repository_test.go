package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

type returnRow struct {
	id, requestID, itemID, ownerID, requesterID uuid.UUID
	status                                      string
	ownerConfirmed                              bool
	requesterConfirmed                          bool
}

func returnRequestRows(r returnRow) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_id", "item_id", "item_title", "owner_id", "requester_id",
		"status", "return_location", "return_date", "owner_confirmed",
		"requester_confirmed", "created_at", "updated_at",
	}).AddRow(
		r.id.String(), r.requestID.String(), r.itemID.String(), "Дрель",
		r.ownerID.String(), r.requesterID.String(), r.status, "м. Таганская",
		nil, r.ownerConfirmed, r.requesterConfirmed, now, now,
	)
}

func TestReturnRepository_ConfirmReturn_CompletionRestoresItem(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewReturnRepository(db)
	ctx := context.Background()

	row := returnRow{
		id:                 uuid.New(),
		requestID:          uuid.New(),
		itemID:             uuid.New(),
		ownerID:            uuid.New(),
		requesterID:        uuid.New(),
		status:             models.RequestStatusAccepted,
		requesterConfirmed: true,
	}
	completed := []*models.Notification{
		{UserID: row.ownerID, Type: models.NotificationTypeSystem, Title: "Возврат завершён", Message: "м"},
		{UserID: row.requesterID, Type: models.NotificationTypeSystem, Title: "Возврат завершён", Message: "м"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM return_requests WHERE .+ FOR UPDATE").
		WillReturnRows(returnRequestRows(row))
	// Завершение возврата возвращает вещи статус available в той же транзакции.
	mock.ExpectExec("UPDATE items SET status").
		WithArgs(models.ItemStatusAvailable, row.itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range completed {
		mock.ExpectQuery("INSERT INTO notifications").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
				AddRow(uuid.New().String(), time.Now()))
	}
	mock.ExpectExec("UPDATE return_requests").
		WithArgs(models.RequestStatusCompleted, true, true, row.id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, ret, err := repo.ConfirmReturn(ctx, row.id, models.PartyOwner, nil, completed)

	assert.NoError(t, err)
	assert.Equal(t, models.ConfirmCompleted, outcome)
	assert.Equal(t, models.RequestStatusCompleted, ret.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnRepository_ConfirmReturn_PartialKeepsItemBorrowed(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	repo := NewReturnRepository(db)
	ctx := context.Background()

	row := returnRow{
		id:          uuid.New(),
		requestID:   uuid.New(),
		itemID:      uuid.New(),
		ownerID:     uuid.New(),
		requesterID: uuid.New(),
		status:      models.RequestStatusAccepted,
	}
	partial := []*models.Notification{
		{UserID: row.ownerID, Type: models.NotificationTypeReturn, Title: "Возврат подтверждён", Message: "м"},
	}

	// Первое подтверждение не трогает items: вещь остаётся занятой до
	// подтверждения второй стороной.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM return_requests WHERE .+ FOR UPDATE").
		WillReturnRows(returnRequestRows(row))
	mock.ExpectQuery("INSERT INTO notifications").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.New().String(), time.Now()))
	mock.ExpectExec("UPDATE return_requests").
		WithArgs(models.RequestStatusAccepted, false, true, row.id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, ret, err := repo.ConfirmReturn(ctx, row.id, models.PartyRequester, partial, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ConfirmPartial, outcome)
	assert.Equal(t, models.RequestStatusAccepted, ret.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
