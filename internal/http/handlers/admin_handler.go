package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkravchenko/lendit-backend/internal/dto"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers/common"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// AdminHandler предоставляет HTTP слой для модерации.
// Все маршруты защищены middleware.RequireAdmin.
type AdminHandler struct {
	users   *service.UserService
	lending *service.LendingService
	reports *service.ReportService
}

func NewAdminHandler(users *service.UserService, lending *service.LendingService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{users: users, lending: lending, reports: reports}
}

// ListUsers обрабатывает GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	users, err := h.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// SetBanned обрабатывает PATCH /admin/users/:id/ban.
func (h *AdminHandler) SetBanned(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.users.SetBanned(c.Request.Context(), id, req.Banned); err != nil {
		c.Error(err)
		return
	}

	if req.Banned {
		c.JSON(http.StatusOK, gin.H{"message": "пользователь заблокирован"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "пользователь разблокирован"})
}

// PendingRequests обрабатывает GET /admin/requests/pending.
func (h *AdminHandler) PendingRequests(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	requests, err := h.lending.ListPendingRequests(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// PendingReturns обрабатывает GET /admin/returns/pending.
func (h *AdminHandler) PendingReturns(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	returns, err := h.lending.ListPendingReturns(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, returns)
}

// ListReports обрабатывает GET /admin/reports с фильтром по статусу.
func (h *AdminHandler) ListReports(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListReports(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ResolveReport обрабатывает POST /admin/reports/:id/resolve.
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.ResolveReport(c.Request.Context(), id, adminID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}
