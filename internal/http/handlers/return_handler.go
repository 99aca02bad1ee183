package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravchenko/lendit-backend/internal/dto"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers/common"
	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// ReturnHandler предоставляет HTTP слой для возвратов.
type ReturnHandler struct {
	lending *service.LendingService
}

func NewReturnHandler(lending *service.LendingService) *ReturnHandler {
	return &ReturnHandler{lending: lending}
}

// Create обрабатывает POST /returns.
func (h *ReturnHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.lending.CreateReturn(c.Request.Context(), userID, service.CreateReturnInput{
		RequestID:      req.RequestID,
		ReturnLocation: req.ReturnLocation,
		ReturnDate:     req.ReturnDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, ret)
}

// Get обрабатывает GET /returns/:id.
func (h *ReturnHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.lending.GetReturn(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

// GetByRequest обрабатывает GET /requests/:id/return — возврат по заявке.
func (h *ReturnHandler) GetByRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.lending.GetReturnForRequest(c.Request.Context(), requestID, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

// List обрабатывает GET /returns — все возвраты, где я участник.
func (h *ReturnHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	returns, err := h.lending.ListMyReturns(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, returns)
}

// Approve обрабатывает POST /returns/:id/approve.
func (h *ReturnHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.lending.ApproveReturn(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

// Reject обрабатывает POST /returns/:id/reject.
func (h *ReturnHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ret, err := h.lending.RejectReturn(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

// Confirm обрабатывает POST /returns/:id/confirm.
// После подтверждения обеими сторонами вещь снова доступна.
func (h *ReturnHandler) Confirm(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	outcome, ret, err := h.lending.ConfirmReturn(c.Request.Context(), id, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ConfirmResponse{
		Completed: outcome == models.ConfirmCompleted,
		Request:   ret,
	})
}
