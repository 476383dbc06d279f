package alerts

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"stockhub/internal/docstore"
	"stockhub/internal/forecast"
	"stockhub/internal/models"
)

// Config holds the generation thresholds and the forecast tuning passed to
// the models.
type Config struct {
	MinRawHistory   int     `toml:"min_raw_history"`
	MinValidHistory int     `toml:"min_valid_history"`
	HorizonDays     float64 `toml:"horizon_days"`
	UrgentDays      float64 `toml:"urgent_days"`
	Forecast        forecast.Config `toml:"-"`
}

// DefaultConfig returns the standard generation thresholds.
func DefaultConfig() Config {
	return Config{
		MinRawHistory:   10,
		MinValidHistory: 7,
		HorizonDays:     14,
		UrgentDays:      5,
		Forecast:        forecast.DefaultConfig(),
	}
}

// Result summarizes one generation pass.
type Result struct {
	ItemsProcessed int
	NewAlerts      []models.Alert
}

// Generator runs alert generation passes: one read of the owner's items and
// alerts, pure evaluation per item, one batched write of new alerts. Alert
// ids derive from (kind, item id), so concurrent or repeated passes over
// unchanged data write nothing new.
type Generator struct {
	store docstore.Store
	cfg   Config
	now   func() time.Time
}

func NewGenerator(store docstore.Store, cfg Config) *Generator {
	return &Generator{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Generate evaluates every item the owner has and persists alerts whose
// deterministic ids do not exist yet. Storage failures abort the pass with
// a single error; re-running later is safe.
func (g *Generator) Generate(ctx context.Context, owner string) (*Result, error) {
	if owner == "" {
		return nil, fmt.Errorf("alert generation requires an owner")
	}

	itemDocs, err := g.store.QueryByOwner(ctx, docstore.CollectionItems, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read items for %s: %w", owner, err)
	}

	alertDocs, err := g.store.QueryByOwner(ctx, docstore.CollectionAlerts, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing alerts for %s: %w", owner, err)
	}
	existing := make(map[string]struct{}, len(alertDocs))
	for _, doc := range alertDocs {
		existing[doc.ID] = struct{}{}
	}

	result := &Result{}
	var ops []docstore.WriteOp
	for _, doc := range itemDocs {
		var item models.Item
		if err := doc.Decode(&item); err != nil {
			log.Printf("Skipping undecodable item %s: %v", doc.ID, err)
			continue
		}
		item.ID = doc.ID
		result.ItemsProcessed++

		for _, candidate := range g.evaluate(&item, owner) {
			if _, found := existing[candidate.ID]; found {
				continue
			}
			result.NewAlerts = append(result.NewAlerts, candidate)
			ops = append(ops, docstore.WriteOp{
				Kind:       docstore.WriteUpsert,
				Collection: docstore.CollectionAlerts,
				ID:         candidate.ID,
				Owner:      owner,
				Doc:        candidate,
			})
		}
	}

	if len(ops) > 0 {
		if err := g.store.BatchWrite(ctx, ops); err != nil {
			return nil, fmt.Errorf("failed to persist %d alerts for %s: %w", len(ops), owner, err)
		}
	}

	log.Printf("Alert generation for %s: %d items, %d new alerts", owner, result.ItemsProcessed, len(result.NewAlerts))
	return result, nil
}

// evaluate applies the three checks to one item and returns every candidate
// alert. Candidates are deduplicated against existing ids by the caller.
func (g *Generator) evaluate(item *models.Item, owner string) []models.Alert {
	var candidates []models.Alert
	now := g.now()

	minStock := item.EffectiveMinStock()
	if item.Quantity > 0 && item.Quantity <= minStock {
		candidates = append(candidates, models.Alert{
			ID:        models.AlertKindLowStock.AlertID(item.ID),
			Kind:      models.AlertKindLowStock,
			Title:     "Low Stock Alert",
			Message:   fmt.Sprintf("'%s' is running low (%d remaining, threshold: %d)", item.Name, item.Quantity, minStock),
			ItemID:    item.ID,
			Severity:  models.SeverityHigh,
			Timestamp: now,
			Owner:     owner,
		})
	}

	if item.Quantity == 0 {
		candidates = append(candidates, models.Alert{
			ID:        models.AlertKindOutOfStock.AlertID(item.ID),
			Kind:      models.AlertKindOutOfStock,
			Title:     "Out of Stock",
			Message:   fmt.Sprintf("'%s' is completely out of stock", item.Name),
			ItemID:    item.ID,
			Severity:  models.SeverityMedium,
			Timestamp: now,
			Owner:     owner,
		})
	}

	if predictive := g.evaluatePredictive(item, owner, now); predictive != nil {
		candidates = append(candidates, *predictive)
	}

	return candidates
}

// evaluatePredictive runs the forecast models when the item has enough
// history. Too little data is a normal outcome, not an error.
func (g *Generator) evaluatePredictive(item *models.Item, owner string, now time.Time) *models.Alert {
	if len(item.EditHistory) < g.cfg.MinRawHistory {
		return nil
	}

	valid := forecast.NormalizeHistory(item.EditHistory)
	if len(valid) < g.cfg.MinValidHistory {
		return nil
	}

	blended := forecast.Estimate(valid, item.Quantity, g.cfg.Forecast)
	if math.IsInf(blended, 1) || blended >= g.cfg.HorizonDays {
		return nil
	}

	severity := models.SeverityMedium
	if blended < g.cfg.UrgentDays {
		severity = models.SeverityHigh
	}
	confidence := forecast.Confidence(valid, len(item.EditHistory), now)

	return &models.Alert{
		ID:         models.AlertKindPredictive.AlertID(item.ID),
		Kind:       models.AlertKindPredictive,
		Title:      "Restock Forecast",
		Message:    fmt.Sprintf("'%s' will run out in ~%d days", item.Name, int(math.Round(blended))),
		ItemID:     item.ID,
		Severity:   severity,
		Timestamp:  now,
		Owner:      owner,
		Confidence: &confidence,
	}
}
