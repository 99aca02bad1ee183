package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification описывает персональное уведомление пользователя.
// Строки создаются в одной транзакции с вызвавшим их переходом жизненного
// цикла (transactional outbox); доставкой по WebSocket занимается диспетчер.
type Notification struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Type        string     `db:"type" json:"type"`
	Title       string     `db:"title" json:"title"`
	Message     string     `db:"message" json:"message"`
	Link        *string    `db:"link" json:"link,omitempty"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	Attempts    int        `db:"attempts" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
