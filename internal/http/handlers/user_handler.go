package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravchenko/lendit-backend/internal/dto"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers/common"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// UserHandler отдаёт публичные профили пользователей.
type UserHandler struct {
	users   *service.UserService
	reviews *service.ReviewService
}

func NewUserHandler(users *service.UserService, reviews *service.ReviewService) *UserHandler {
	return &UserHandler{users: users, reviews: reviews}
}

// Get обрабатывает GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	rating, count, err := h.reviews.GetUserRating(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.UserProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Rating:      rating,
		ReviewCount: count,
		IsBanned:    user.IsBanned,
	})
}
