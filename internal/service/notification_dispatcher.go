package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/logger"
	"github.com/mkravchenko/lendit-backend/internal/models"
)

// OutboxRepository описывает очередь недоставленных уведомлений.
type OutboxRepository interface {
	ListUndelivered(ctx context.Context, limit, maxAttempts int) ([]models.Notification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}

// Pusher доставляет событие подключённым клиентам пользователя.
type Pusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
	IsOnline(userID uuid.UUID) bool
}

// NotificationDispatcher доставляет уведомления из таблицы-очереди по
// WebSocket. Уведомления пишутся в БД транзакциями жизненного цикла заявок;
// диспетчер опрашивает очередь и помечает доставленное, поэтому сбой
// доставки не теряет уведомление, а падение после доставки приводит максимум
// к повторной отправке.
type NotificationDispatcher struct {
	repo         OutboxRepository
	pusher       Pusher
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
}

// NewNotificationDispatcher создаёт диспетчер рассылки.
func NewNotificationDispatcher(repo OutboxRepository, pusher Pusher, pollInterval time.Duration, batchSize, maxAttempts int) *NotificationDispatcher {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &NotificationDispatcher{
		repo:         repo,
		pusher:       pusher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
	}
}

// Run опрашивает очередь до отмены контекста.
func (d *NotificationDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce(ctx)
		}
	}
}

// DispatchOnce обрабатывает одну пачку недоставленных уведомлений.
func (d *NotificationDispatcher) DispatchOnce(ctx context.Context) {
	notifs, err := d.repo.ListUndelivered(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		if logger.Log != nil {
			logger.Log.Errorf("notification dispatcher: чтение очереди: %v", err)
		}
		return
	}

	for i := range notifs {
		n := &notifs[i]
		// Офлайн-получателям ничего не шлём: уведомление остаётся в очереди
		// до следующего опроса после подключения, а до тех пор доступно
		// через REST-список.
		if !d.pusher.IsOnline(n.UserID) {
			continue
		}
		if err := d.pusher.BroadcastToUser(n.UserID, "notification", n); err != nil {
			if logger.Log != nil {
				logger.Log.Warnf("notification dispatcher: доставка %s: %v", n.ID, err)
			}
			if err := d.repo.IncrementAttempts(ctx, n.ID); err != nil && logger.Log != nil {
				logger.Log.Errorf("notification dispatcher: счётчик попыток %s: %v", n.ID, err)
			}
			continue
		}

		if err := d.repo.MarkDelivered(ctx, n.ID); err != nil && logger.Log != nil {
			logger.Log.Errorf("notification dispatcher: отметка доставки %s: %v", n.ID, err)
		}
	}
}
