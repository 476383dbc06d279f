package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"stockhub/internal/alerts"
	"stockhub/internal/caching"
	"stockhub/internal/common"
	"stockhub/internal/docstore"
	"stockhub/internal/services"
)

// refreshLimit caps manual refreshes per owner per minute. Screen-focus
// triggers can fire in bursts on the client.
const (
	refreshLimit  = 6
	refreshWindow = time.Minute
)

// AlertHandlers handles alert HTTP requests
type AlertHandlers struct {
	alertService services.AlertService
	generator    *alerts.Generator
	cacheService caching.CacheService
}

// NewAlertHandlers creates a new alert handlers instance
func NewAlertHandlers(alertService services.AlertService, generator *alerts.Generator, cacheService caching.CacheService) *AlertHandlers {
	return &AlertHandlers{
		alertService: alertService,
		generator:    generator,
		cacheService: cacheService,
	}
}

// ListAlerts handles getting the owner's alerts
// @Summary List alerts
// @Tags alerts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /v1/alerts [get]
func (h *AlertHandlers) ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	alertList, err := h.alertService.List(ctx, owner)
	if err != nil {
		return common.SendServerError(c, "Failed to list alerts")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts": alertList,
		"count":  len(alertList),
	})
}

// Refresh runs one synchronous alert generation pass for the caller. The
// client invokes it on pull-to-refresh, screen focus, and foregrounding;
// passes are idempotent so racing invocations are safe.
// @Summary Refresh alerts
// @Tags alerts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /v1/alerts/refresh [post]
func (h *AlertHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limited, err := h.cacheService.IsRateLimited(ctx, "refresh:"+owner, refreshLimit, refreshWindow)
	if err != nil {
		log.Printf("Rate limit check failed for %s: %v", owner, err)
	} else if limited {
		return common.SendRateLimitedError(c, "Too many refreshes, try again shortly")
	}

	result, err := h.generator.Generate(ctx, owner)
	if err != nil {
		return common.SendServerError(c, "Alert generation failed")
	}

	if cacheErr := h.cacheService.DeleteAlerts(ctx, owner); cacheErr != nil {
		log.Printf("Failed to invalidate alert cache for %s: %v", owner, cacheErr)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"itemsProcessed": result.ItemsProcessed,
		"newAlerts":      result.NewAlerts,
		"newAlertCount":  len(result.NewAlerts),
	})
}

// MarkRead handles flagging an alert as read
func (h *AlertHandlers) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.alertService.MarkRead(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Alert")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to mark alert read")
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkActionTaken handles flagging an alert as acted on
func (h *AlertHandlers) MarkActionTaken(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.alertService.MarkActionTaken(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Alert")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to mark alert actioned")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAlert handles removing an alert
func (h *AlertHandlers) DeleteAlert(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	err := h.alertService.Delete(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Alert")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to delete alert")
	}
	return c.NoContent(http.StatusNoContent)
}
