package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

// ErrMessageNotFound возвращается, когда сообщение не найдено.
var ErrMessageNotFound = errors.New("message not found")

// ConversationRepository отвечает за диалоги и сообщения.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository создаёт новый экземпляр.
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID возвращает диалог по идентификатору.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `SELECT id, request_id, owner_id, requester_id, created_at FROM conversations WHERE id = $1`
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation repository: get by id %w", err)
	}
	return &conv, nil
}

// GetByRequestID возвращает диалог, привязанный к заявке.
func (r *ConversationRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `SELECT id, request_id, owner_id, requester_id, created_at FROM conversations WHERE request_id = $1`
	if err := r.db.GetContext(ctx, &conv, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation repository: get by request id %w", err)
	}
	return &conv, nil
}

// ListMy возвращает диалоги пользователя, отсортированные по свежести.
func (r *ConversationRepository) ListMy(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	query := `
		SELECT id, request_id, owner_id, requester_id, created_at
		FROM conversations
		WHERE owner_id = $1 OR requester_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &conversations, query, userID); err != nil {
		return nil, fmt.Errorf("conversation repository: list my %w", err)
	}
	return conversations, nil
}

// AddMessage сохраняет сообщение в диалоге.
func (r *ConversationRepository) AddMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, author_type, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		msg.ConversationID,
		msg.AuthorType,
		msg.AuthorID,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("conversation repository: add message %w", err)
	}
	return nil
}

// ListMessages возвращает сообщения диалога с пагинацией.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT id, conversation_id, author_type, author_id, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return messages, nil
}

// GetLastMessage возвращает последнее сообщение диалога.
func (r *ConversationRepository) GetLastMessage(ctx context.Context, conversationID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	query := `
		SELECT id, conversation_id, author_type, author_id, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &msg, query, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("conversation repository: get last message %w", err)
	}
	return &msg, nil
}
