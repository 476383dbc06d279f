package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"stockhub/internal/common"
	"stockhub/internal/docstore"
	"stockhub/internal/models"
	"stockhub/internal/services"
)

// ItemHandlers handles inventory item HTTP requests
type ItemHandlers struct {
	itemService  services.ItemService
	imageService services.ImageService
	imageBucket  string
}

// NewItemHandlers creates a new item handlers instance
func NewItemHandlers(itemService services.ItemService, imageService services.ImageService, imageBucket string) *ItemHandlers {
	return &ItemHandlers{
		itemService:  itemService,
		imageService: imageService,
		imageBucket:  imageBucket,
	}
}

// ListItems handles getting all items for the authenticated owner
// @Summary List items
// @Tags items
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /v1/items [get]
func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	items, err := h.itemService.List(ctx, owner)
	if err != nil {
		return common.SendServerError(c, "Failed to list items")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// CreateItemRequest represents the item creation payload
type CreateItemRequest struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	MinStock   *int   `json:"minStock,omitempty"`
	HubID      string `json:"hubId,omitempty"`
	LocationID string `json:"locationId,omitempty"`
	Category   string `json:"category,omitempty"`
}

// CreateItem handles creating a new inventory item
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateNonNegativeInt(req.Quantity, "quantity"); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}
	if req.MinStock != nil {
		if err := common.ValidateNonNegativeInt(*req.MinStock, "minStock"); err != nil {
			return common.SendValidationError(c, "minStock", err.Error())
		}
	}

	item := &models.Item{
		Name:       req.Name,
		Quantity:   req.Quantity,
		MinStock:   req.MinStock,
		HubID:      req.HubID,
		LocationID: req.LocationID,
		Category:   req.Category,
	}
	if err := h.itemService.Create(ctx, owner, item); err != nil {
		return common.SendServerError(c, "Failed to create item")
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem handles fetching one item by id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.itemService.GetByID(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to get item")
	}

	return c.JSON(http.StatusOK, item)
}

// UpdateItem handles updating item metadata (name, thresholds, placement)
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	item := &models.Item{
		ID:         c.Param("id"),
		Name:       req.Name,
		Quantity:   req.Quantity,
		MinStock:   req.MinStock,
		HubID:      req.HubID,
		LocationID: req.LocationID,
		Category:   req.Category,
	}
	err := h.itemService.Update(ctx, owner, item)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to update item")
	}

	return c.JSON(http.StatusOK, item)
}

// AdjustQuantityRequest represents a stock level change
type AdjustQuantityRequest struct {
	NewQuantity int `json:"newQuantity"`
}

// AdjustQuantity handles stock edits; every edit lands in the item's edit
// history, which feeds the forecasting engine
// @Summary Adjust item quantity
// @Tags items
// @Accept json
// @Produce json
// @Success 200 {object} models.Item
// @Router /v1/items/{id}/quantity [put]
func (h *ItemHandlers) AdjustQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req AdjustQuantityRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateNonNegativeInt(req.NewQuantity, "newQuantity"); err != nil {
		return common.SendValidationError(c, "newQuantity", err.Error())
	}

	item, err := h.itemService.AdjustQuantity(ctx, owner, c.Param("id"), req.NewQuantity)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to adjust quantity")
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles removing an item
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.itemService.Delete(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to delete item")
	}

	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles attaching a photo to an item
func (h *ItemHandlers) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.itemService.GetByID(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to get item")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendClientError(c, "Missing image file")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read image")
	}
	defer src.Close()

	objectName := item.ID
	contentType := file.Header.Get("Content-Type")
	if err := h.imageService.UploadImage(ctx, h.imageBucket, objectName, src, file.Size, contentType); err != nil {
		return common.SendServerError(c, "Failed to store image")
	}

	item.ImageObject = objectName
	if err := h.itemService.Update(ctx, owner, item); err != nil {
		return common.SendServerError(c, "Failed to link image")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"imageObject": objectName})
}

// GetImageURL returns a short-lived download URL for the item's photo
func (h *ItemHandlers) GetImageURL(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	item, err := h.itemService.GetByID(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to get item")
	}
	if item.ImageObject == "" {
		return common.SendNotFoundError(c, "Item image")
	}

	url, err := h.imageService.GetPresignedURL(h.imageBucket, item.ImageObject, 15*time.Minute)
	if err != nil {
		return common.SendServerError(c, "Failed to sign image URL")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"url": url})
}
