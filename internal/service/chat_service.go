package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/logger"
	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/validation"
)

// ConversationRepository описывает зависимости чата от хранилища.
type ConversationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Conversation, error)
	ListMy(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	AddMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
	GetLastMessage(ctx context.Context, conversationID uuid.UUID) (*models.Message, error)
}

// MessageNotifier сохраняет уведомление о новом сообщении.
type MessageNotifier interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// ChatService содержит бизнес-логику переписки сторон сделки.
type ChatService struct {
	repo     ConversationRepository
	notifier MessageNotifier
}

// NewChatService создаёт сервис чата.
func NewChatService(repo ConversationRepository, notifier MessageNotifier) *ChatService {
	return &ChatService{repo: repo, notifier: notifier}
}

// GetConversation возвращает диалог участника.
func (s *ChatService) GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}

// GetConversationByRequest возвращает диалог по заявке.
func (s *ChatService) GetConversationByRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}

// ListConversations возвращает диалоги пользователя с последними сообщениями.
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	convs, err := s.repo.ListMy(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range convs {
		last, err := s.repo.GetLastMessage(ctx, convs[i].ID)
		if err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				continue
			}
			return nil, err
		}
		convs[i].LastMessage = last
	}
	return convs, nil
}

// SendMessage добавляет сообщение участника и уведомляет вторую сторону.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, authorID uuid.UUID, content string) (*models.Message, error) {
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, fmt.Errorf("chat service: %w", err)
	}

	conv, err := s.GetConversation(ctx, conversationID, authorID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		AuthorType:     models.MessageAuthorUser,
		AuthorID:       &authorID,
		Content:        content,
	}
	if err := s.repo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipient := conv.OwnerID
	if authorID == conv.OwnerID {
		recipient = conv.RequesterID
	}
	link := fmt.Sprintf("/conversations/%s", conversationID)
	notif := &models.Notification{
		UserID:  recipient,
		Type:    models.NotificationTypeMessage,
		Title:   "Новое сообщение",
		Message: "Вам пришло новое сообщение в диалоге",
		Link:    &link,
	}
	if err := s.notifier.Create(ctx, notif); err != nil {
		// Сообщение уже записано; уведомление не критично.
		if logger.Log != nil {
			logger.Log.Warnf("chat service: уведомление о сообщении: %v", err)
		}
	}

	return msg, nil
}

// ListMessages возвращает сообщения диалога участнику.
func (s *ChatService) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}
