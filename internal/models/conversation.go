package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы авторов сообщений.
const (
	MessageAuthorUser   = "user"
	MessageAuthorSystem = "system"
)

// Conversation описывает чат между владельцем вещи и заявителем.
type Conversation struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RequestID   *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`
	RequesterID uuid.UUID  `db:"requester_id" json:"requester_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	// Последнее сообщение для списков диалогов (загружается отдельно)
	LastMessage *Message `json:"last_message,omitempty"`
}

// IsParticipant проверяет, что пользователь — участник диалога.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.OwnerID == userID || c.RequesterID == userID
}

// Message описывает сообщение в чате. Системные сообщения пишутся
// жизненным циклом заявки и не имеют автора.
type Message struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	AuthorType     string     `db:"author_type" json:"author_type"`
	AuthorID       *uuid.UUID `db:"author_id" json:"author_id,omitempty"`
	Content        string     `db:"content" json:"content"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
