package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest представляет запрос регистрации.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// LoginRequest представляет запрос входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest представляет запрос обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ItemRequest представляет запрос создания или обновления вещи.
type ItemRequest struct {
	Title             string      `json:"title" binding:"required"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	Location          string      `json:"location"`
	UnlimitedDuration bool        `json:"unlimited_duration"`
	DurationDays      *int        `json:"duration_days"`
	Conditions        *string     `json:"conditions"`
	ImageIDs          []uuid.UUID `json:"image_ids"`
}

// ItemStatusRequest представляет запрос смены статуса вещи владельцем.
type ItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateBorrowRequest представляет заявку на одалживание.
type CreateBorrowRequest struct {
	ItemID         uuid.UUID  `json:"item_id" binding:"required"`
	Message        string     `json:"message"`
	PickupLocation string     `json:"pickup_location"`
	PickupDate     *time.Time `json:"pickup_date"`
}

// CreateReturnRequest представляет заявку на возврат.
type CreateReturnRequest struct {
	RequestID      uuid.UUID  `json:"request_id" binding:"required"`
	ReturnLocation string     `json:"return_location"`
	ReturnDate     *time.Time `json:"return_date"`
}

// SendMessageRequest представляет отправку сообщения в диалоге.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateReviewRequest представляет создание отзыва.
type CreateReviewRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Comment   *string   `json:"comment"`
}

// CreateReportRequest представляет подачу жалобы.
type CreateReportRequest struct {
	TargetType  string    `json:"target_type" binding:"required"`
	TargetID    uuid.UUID `json:"target_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	Description *string   `json:"description"`
}

// ResolveReportRequest представляет решение модератора по жалобе.
type ResolveReportRequest struct {
	Status string `json:"status" binding:"required"`
}

// BanRequest представляет блокировку или разблокировку пользователя.
type BanRequest struct {
	Banned bool `json:"banned"`
}
