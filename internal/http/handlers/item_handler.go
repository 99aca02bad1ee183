package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/dto"
	"github.com/mkravchenko/lendit-backend/internal/http/handlers/common"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/service"
)

// ItemHandler предоставляет HTTP слой для каталога вещей.
type ItemHandler struct {
	items *service.ItemService
}

func NewItemHandler(items *service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// List обрабатывает GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ItemListParams{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}

	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, err := uuid.Parse(ownerStr)
		if err != nil {
			common.RespondBadRequest(c, "неверный идентификатор владельца")
			return
		}
		params.OwnerID = &ownerID
	}

	result, err := h.items.ListItems(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemListResponse{Items: result.Items, Total: result.Total})
}

// Get обрабатывает GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.GetItem(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Mine обрабатывает GET /items/mine.
func (h *ItemHandler) Mine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	result, err := h.items.ListItems(c.Request.Context(), repository.ItemListParams{
		OwnerID: &userID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ItemListResponse{Items: result.Items, Total: result.Total})
}

// Create обрабатывает POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.CreateItem(c.Request.Context(), userID, service.ItemInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Location:          req.Location,
		UnlimitedDuration: req.UnlimitedDuration,
		DurationDays:      req.DurationDays,
		Conditions:        req.Conditions,
		ImageIDs:          req.ImageIDs,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Update обрабатывает PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
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

	var req dto.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), id, userID, service.ItemInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Location:          req.Location,
		UnlimitedDuration: req.UnlimitedDuration,
		DurationDays:      req.DurationDays,
		Conditions:        req.Conditions,
		ImageIDs:          req.ImageIDs,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// SetStatus обрабатывает PATCH /items/:id/status.
func (h *ItemHandler) SetStatus(c *gin.Context) {
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

	var req dto.ItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.SetItemStatus(c.Request.Context(), id, userID, common.IsAdmin(c), req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete обрабатывает DELETE /items/:id.
func (h *ItemHandler) Delete(c *gin.Context) {
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

	if err := h.items.DeleteItem(c.Request.Context(), id, userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "вещь удалена"})
}
