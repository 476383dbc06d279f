package analytics

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"stockhub/internal/caching"
	"stockhub/internal/docstore"
	"stockhub/internal/forecast"
	"stockhub/internal/models"
)

const summaryCacheTTL = 5 * time.Minute

// Service computes the dashboard numbers and per-item trend charts the
// mobile app renders.
type Service struct {
	store        docstore.Store
	cacheService caching.CacheService
	forecastCfg  forecast.Config
	now          func() time.Time
}

func NewService(store docstore.Store, cacheService caching.CacheService, forecastCfg forecast.Config) *Service {
	return &Service{
		store:        store,
		cacheService: cacheService,
		forecastCfg:  forecastCfg,
		now:          time.Now,
	}
}

// OwnerSummary returns the owner's dashboard counts, served from cache when
// fresh.
func (a *Service) OwnerSummary(ctx context.Context, owner string) (*models.Summary, error) {
	if cached, err := a.cacheService.GetSummary(ctx, owner); err == nil && cached != nil {
		return cached, nil
	}

	itemDocs, err := a.store.QueryByOwner(ctx, docstore.CollectionItems, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read items for summary: %w", err)
	}
	alertDocs, err := a.store.QueryByOwner(ctx, docstore.CollectionAlerts, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read alerts for summary: %w", err)
	}

	summary := &models.Summary{
		Owner:       owner,
		LastUpdated: a.now(),
	}
	for _, doc := range itemDocs {
		var item models.Item
		if err := doc.Decode(&item); err != nil {
			continue
		}
		summary.ItemCount++
		summary.TotalQuantity += item.Quantity
		switch {
		case item.Quantity == 0:
			summary.OutOfStockCount++
		case item.Quantity <= item.EffectiveMinStock():
			summary.LowStockCount++
		}
	}
	for _, doc := range alertDocs {
		var alert models.Alert
		if err := doc.Decode(&alert); err != nil {
			continue
		}
		if !alert.Read {
			summary.UnreadAlerts++
		}
	}

	if cacheErr := a.cacheService.SetSummary(ctx, owner, summary, summaryCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache summary for %s: %v", owner, cacheErr)
	}
	return summary, nil
}

// ItemTrend builds the quantity-over-time series for one item along with a
// blended depletion estimate for the chart header. DaysRemaining stays nil
// when no depletion trend exists.
func (a *Service) ItemTrend(ctx context.Context, owner, itemID string) (*models.TrendReport, error) {
	doc, err := a.store.GetByID(ctx, docstore.CollectionItems, itemID)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner {
		return nil, docstore.ErrNotFound
	}

	var item models.Item
	if err := doc.Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", itemID, err)
	}

	history := forecast.NormalizeHistory(item.EditHistory)
	report := &models.TrendReport{
		ItemID:   itemID,
		ItemName: item.Name,
		Points:   make([]models.TrendPoint, 0, len(history)),
	}
	for _, event := range history {
		report.Points = append(report.Points, models.TrendPoint{
			Date:     event.OccurredAt,
			Quantity: event.NewQuantity,
		})
	}

	if len(history) > 0 {
		report.Confidence = forecast.Confidence(history, len(item.EditHistory), a.now())
		blended := forecast.Estimate(history, item.Quantity, a.forecastCfg)
		if !math.IsInf(blended, 1) {
			days := int(math.Round(blended))
			report.DaysRemaining = &days
		}
	}
	return report, nil
}

// WarmSummaries refreshes the cached summary for every owner. The
// background scheduler calls this so the dashboard opens hot.
func (a *Service) WarmSummaries(ctx context.Context, owners []string) {
	for _, owner := range owners {
		if err := a.cacheService.Delete(ctx, fmt.Sprintf("summary:%s", owner)); err != nil {
			log.Printf("Failed to drop stale summary for %s: %v", owner, err)
		}
		if _, err := a.OwnerSummary(ctx, owner); err != nil {
			log.Printf("Failed to warm summary for %s: %v", owner, err)
		}
	}
}
