package dto

import (
	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

// ErrorResponse представляет стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse представляет стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ItemListResponse представляет страницу каталога.
type ItemListResponse struct {
	Items []models.Item `json:"items"`
	Total int           `json:"total"`
}

// UserProfileResponse представляет публичный профиль с рейтингом.
type UserProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	IsBanned    bool      `json:"is_banned"`
}

// ConfirmResponse сообщает итог подтверждения передачи или возврата.
type ConfirmResponse struct {
	Completed bool        `json:"completed"`
	Request   interface{} `json:"request"`
}

// UnreadCountResponse представляет счётчик непрочитанных уведомлений.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
