package forecast

import (
	"math"
	"time"

	"stockhub/internal/models"
)

// Blend combines the three model estimates with fixed weights. Infinity
// propagates: one model seeing no depletion trend makes the blended result
// infinite, which suppresses the predictive alert.
func Blend(linearDays, exponentialDays, movingAvgDays float64, cfg Config) float64 {
	return cfg.LinearWeight*linearDays +
		cfg.ExponentialWeight*exponentialDays +
		cfg.MovingAverageWeight*movingAvgDays
}

// Estimate runs all three models over an already-normalized history and
// returns the blended days-remaining.
func Estimate(history []models.QuantityChangeEvent, currentQuantity int, cfg Config) float64 {
	linear := LinearForecast(history, currentQuantity)
	exponential := ExponentialForecast(history, currentQuantity, cfg.Alpha)
	movingAvg := MovingAverageForecast(history, currentQuantity, cfg.MovingAverageWindow)
	return Blend(linear, exponential, movingAvg, cfg)
}

// Confidence scores forecast reliability 0-100 from four components:
// data volume (0-40), consumption consistency (0-30), recency (0-20), and
// history completeness (0-10). rawCount is the entry count before
// normalization dropped invalid records.
func Confidence(history []models.QuantityChangeEvent, rawCount int, now time.Time) int {
	if len(history) == 0 {
		return 0
	}

	volumeScore := math.Min(40, float64(len(history))/15*40)

	var consistencyScore float64
	var changes []float64
	for i := 1; i < len(history); i++ {
		if history[i].NewQuantity < history[i-1].NewQuantity {
			changes = append(changes, float64(history[i-1].NewQuantity-history[i].NewQuantity))
		}
	}
	if len(changes) > 2 {
		var mean float64
		for _, c := range changes {
			mean += c
		}
		mean /= float64(len(changes))

		var variance float64
		for _, c := range changes {
			variance += (c - mean) * (c - mean)
		}
		variance /= float64(len(changes))

		denom := mean
		if denom == 0 {
			denom = 1
		}
		consistencyScore = 30 * (1 - math.Min(1, variance/denom))
	}

	daysSinceLast := now.Sub(history[len(history)-1].OccurredAt).Hours() / 24
	recencyScore := 20 * (1 - math.Min(1, daysSinceLast/7))

	var completenessScore float64
	if rawCount > 0 {
		completenessScore = 10 * float64(len(history)) / float64(rawCount)
	}

	total := math.Round(volumeScore + consistencyScore + recencyScore + completenessScore)
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return int(total)
}
