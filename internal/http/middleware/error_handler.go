package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mkravchenko/lendit-backend/internal/logger"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		var appErr *apperror.AppError
		switch {
		case errors.As(err.Err, &appErr):
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		case errors.Is(err.Err, repository.ErrUserNotFound):
			statusCode = http.StatusNotFound
			message = "пользователь не найден"
		case errors.Is(err.Err, repository.ErrItemNotFound):
			statusCode = http.StatusNotFound
			message = "вещь не найдена"
		case errors.Is(err.Err, repository.ErrRequestNotFound):
			statusCode = http.StatusNotFound
			message = "заявка не найдена"
		case errors.Is(err.Err, repository.ErrReturnNotFound):
			statusCode = http.StatusNotFound
			message = "заявка на возврат не найдена"
		case errors.Is(err.Err, repository.ErrConversationNotFound):
			statusCode = http.StatusNotFound
			message = "диалог не найден"
		case errors.Is(err.Err, repository.ErrActiveRequestExists):
			statusCode = http.StatusConflict
			message = "по этой вещи уже есть активная заявка"
		case errors.Is(err.Err, repository.ErrActiveReturnExists):
			statusCode = http.StatusConflict
			message = "по этой заявке уже открыт возврат"
		case errors.Is(err.Err, repository.ErrStatusConflict):
			statusCode = http.StatusConflict
			message = "заявка уже рассмотрена"
		default:
			errStr := err.Error()
			if errStr != "" && !containsInternalKeywords(errStr) {
				message = errStr
				if contains(errStr, "неверн") || contains(errStr, "невалид") || contains(errStr, "должен") || contains(errStr, "обязател") {
					statusCode = http.StatusBadRequest
				} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
					statusCode = http.StatusForbidden
				}
			}
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
