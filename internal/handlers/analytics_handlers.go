package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"stockhub/internal/analytics"
	"stockhub/internal/common"
	"stockhub/internal/docstore"
)

// AnalyticsHandlers serves the dashboard summary and trend charts
type AnalyticsHandlers struct {
	analyticsSvc *analytics.Service
}

// NewAnalyticsHandlers creates a new analytics handlers instance
func NewAnalyticsHandlers(analyticsSvc *analytics.Service) *AnalyticsHandlers {
	return &AnalyticsHandlers{analyticsSvc: analyticsSvc}
}

// GetSummary handles the dashboard summary request
func (h *AnalyticsHandlers) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.analyticsSvc.OwnerSummary(ctx, owner)
	if err != nil {
		return common.SendServerError(c, "Failed to compute summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// GetItemTrend handles the per-item quantity trend chart request
func (h *AnalyticsHandlers) GetItemTrend(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnerFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	report, err := h.analyticsSvc.ItemTrend(ctx, owner, c.Param("id"))
	if errors.Is(err, docstore.ErrNotFound) {
		return common.SendNotFoundError(c, "Item")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to compute trend")
	}
	return c.JSON(http.StatusOK, report)
}
