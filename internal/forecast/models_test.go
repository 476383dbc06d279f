package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockhub/internal/models"
)

// dailySeries builds one event per day with the given quantities.
func dailySeries(quantities ...int) []models.QuantityChangeEvent {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	events := make([]models.QuantityChangeEvent, len(quantities))
	for i, q := range quantities {
		events[i] = models.QuantityChangeEvent{
			OccurredAt:  start.AddDate(0, 0, i),
			NewQuantity: q,
		}
	}
	return events
}

func TestLinearForecast_DepletingSeries(t *testing.T) {
	// Slope -10 per step, 80 on hand: 8 steps left.
	days := LinearForecast(dailySeries(100, 90, 80), 80)
	assert.Equal(t, float64(8), days)
}

func TestLinearForecast_FractionalRate(t *testing.T) {
	days := LinearForecast(dailySeries(100, 95), 12)
	assert.Equal(t, float64(2), days)
}

func TestLinearForecast_NoDepletion(t *testing.T) {
	assert.True(t, math.IsInf(LinearForecast(dailySeries(50, 50, 50), 50), 1), "flat series")
	assert.True(t, math.IsInf(LinearForecast(dailySeries(10, 20, 30), 30), 1), "growing series")
}

func TestLinearForecast_TooFewEntries(t *testing.T) {
	assert.True(t, math.IsInf(LinearForecast(nil, 10), 1))
	assert.True(t, math.IsInf(LinearForecast(dailySeries(100), 100), 1))
}

func TestExponentialForecast_DepletingSeries(t *testing.T) {
	// Seeded at 100, two usage points of 10/day at alpha 0.3:
	// 0.3*10 + 0.7*100 = 73, then 0.3*10 + 0.7*73 = 54.1.
	days := ExponentialForecast(dailySeries(100, 90, 80), 80, 0.3)
	assert.Equal(t, float64(1), days)
}

func TestExponentialForecast_NoDecreasesKeepsSeed(t *testing.T) {
	// Nothing was consumed, so the estimate stays at the seed quantity.
	days := ExponentialForecast(dailySeries(100, 110, 120), 80, 0.3)
	assert.Equal(t, float64(0), days)
}

func TestExponentialForecast_ZeroSeedNoDecreases(t *testing.T) {
	assert.True(t, math.IsInf(ExponentialForecast(dailySeries(0, 0), 0, 0.3), 1))
	assert.True(t, math.IsInf(ExponentialForecast(nil, 10, 0.3), 1))
}

func TestMovingAverageForecast_DepletingSeries(t *testing.T) {
	// Four usage points of 10/day, window of 3, 60 on hand.
	days := MovingAverageForecast(dailySeries(100, 90, 80, 70, 60), 60, 3)
	assert.Equal(t, float64(6), days)
}

func TestMovingAverageForecast_TooFewUsagePoints(t *testing.T) {
	days := MovingAverageForecast(dailySeries(100, 90, 80), 80, 3)
	assert.True(t, math.IsInf(days, 1))
}

func TestMovingAverageForecast_SameDayChangesIgnored(t *testing.T) {
	same := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	history := []models.QuantityChangeEvent{
		{OccurredAt: same, NewQuantity: 100},
		{OccurredAt: same, NewQuantity: 90},
		{OccurredAt: same, NewQuantity: 80},
		{OccurredAt: same, NewQuantity: 70},
	}
	assert.True(t, math.IsInf(MovingAverageForecast(history, 70, 3), 1))
}

func TestForecasts_NeverNegative(t *testing.T) {
	history := dailySeries(30, 20, 10, 5, 2)
	cfg := DefaultConfig()

	for name, days := range map[string]float64{
		"linear":      LinearForecast(history, 0),
		"exponential": ExponentialForecast(history, 0, cfg.Alpha),
		"movingAvg":   MovingAverageForecast(history, 0, cfg.MovingAverageWindow),
	} {
		assert.GreaterOrEqual(t, days, float64(0), name)
		assert.False(t, math.IsNaN(days), name)
	}
}
