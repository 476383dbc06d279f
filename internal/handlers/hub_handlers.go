package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"stockhub/internal/common"
	"stockhub/internal/docstore"
	"stockhub/internal/models"
	"stockhub/internal/services"
)

// HubHandlers handles hub and location HTTP requests
type HubHandlers struct {
	hubService services.HubService
}

// NewHubHandlers creates a new hub handlers instance
func NewHubHandlers(hubService services.HubService) *HubHandlers {
	return &HubHandlers{hubService: hubService}
}

// HubRequest represents the hub create/update payload
type HubRequest struct {
	Name string `json:"name"`
}

// ListHubs handles getting the owner's hubs
func (h *HubHandlers) ListHubs(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	hubs, err := h.hubService.ListHubs(ctx, owner)
	if err != nil {
		return common.SendServerError(c, "Failed to list hubs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"hubs": hubs})
}

// CreateHub handles creating a hub
func (h *HubHandlers) CreateHub(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req HubRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	hub := &models.Hub{Name: req.Name}
	if err := h.hubService.CreateHub(ctx, owner, hub); err != nil {
		return common.SendServerError(c, "Failed to create hub")
	}
	return c.JSON(http.StatusCreated, hub)
}

// UpdateHub handles renaming a hub
func (h *HubHandlers) UpdateHub(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req HubRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	hub := &models.Hub{ID: c.Param("id"), Name: req.Name}
	err := h.hubService.UpdateHub(ctx, owner, hub)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Hub")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to update hub")
	}
	return c.JSON(http.StatusOK, hub)
}

// DeleteHub handles deleting a hub and its locations
func (h *HubHandlers) DeleteHub(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.hubService.DeleteHub(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Hub")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to delete hub")
	}
	return c.NoContent(http.StatusNoContent)
}

// LocationRequest represents the location creation payload
type LocationRequest struct {
	HubID string `json:"hubId"`
	Name  string `json:"name"`
}

// ListLocations handles listing locations, optionally filtered by hub
func (h *HubHandlers) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locations, err := h.hubService.ListLocations(ctx, owner, c.QueryParam("hubId"))
	if err != nil {
		return common.SendServerError(c, "Failed to list locations")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"locations": locations})
}

// CreateLocation handles creating a location inside a hub
func (h *HubHandlers) CreateLocation(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.HubID, "hubId"); err != nil {
		return common.SendValidationError(c, "hubId", err.Error())
	}

	location := &models.Location{HubID: req.HubID, Name: req.Name}
	err := h.hubService.CreateLocation(ctx, owner, location)
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Hub")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to create location")
	}
	return c.JSON(http.StatusCreated, location)
}

// DeleteLocation handles deleting a location
func (h *HubHandlers) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.hubService.DeleteLocation(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Location")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to delete location")
	}
	return c.NoContent(http.StatusNoContent)
}
