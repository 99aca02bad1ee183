package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravchenko/lendit-backend/internal/dto"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers/common"
	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// RequestHandler предоставляет HTTP слой для заявок на одалживание.
type RequestHandler struct {
	lending *service.LendingService
}

func NewRequestHandler(lending *service.LendingService) *RequestHandler {
	return &RequestHandler{lending: lending}
}

// Create обрабатывает POST /requests.
func (h *RequestHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateBorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	request, err := h.lending.CreateRequest(c.Request.Context(), userID, service.CreateRequestInput{
		ItemID:         req.ItemID,
		Message:        req.Message,
		PickupLocation: req.PickupLocation,
		PickupDate:     req.PickupDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// Get обрабатывает GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
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

	request, err := h.lending.GetRequest(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Incoming обрабатывает GET /requests/incoming — заявки на мои вещи.
func (h *RequestHandler) Incoming(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	requests, err := h.lending.ListIncoming(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Outgoing обрабатывает GET /requests/outgoing — мои заявки на чужие вещи.
func (h *RequestHandler) Outgoing(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	requests, err := h.lending.ListOutgoing(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// Approve обрабатывает POST /requests/:id/approve.
func (h *RequestHandler) Approve(c *gin.Context) {
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

	request, err := h.lending.ApproveRequest(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Reject обрабатывает POST /requests/:id/reject.
func (h *RequestHandler) Reject(c *gin.Context) {
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

	request, err := h.lending.RejectRequest(c.Request.Context(), id, userID, common.IsAdmin(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// ConfirmDelivery обрабатывает POST /requests/:id/confirm-delivery.
// Сделка считается завершённой только после подтверждения обеими сторонами.
func (h *RequestHandler) ConfirmDelivery(c *gin.Context) {
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

	outcome, request, err := h.lending.ConfirmDelivery(c.Request.Context(), id, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ConfirmResponse{
		Completed: outcome == models.ConfirmCompleted,
		Request:   request,
	})
}
