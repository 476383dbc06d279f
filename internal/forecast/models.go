package forecast

import (
	"math"

	"stockhub/internal/models"
)

// Each model returns estimated days until the item reaches zero stock.
// +Inf means no depletion trend was detected. Results are never negative
// and never NaN.

// LinearForecast fits a least-squares line of quantity against history
// index. A depleting series gives a negative fitted slope; that slope's
// magnitude is the per-step consumption rate.
func LinearForecast(history []models.QuantityChangeEvent, currentQuantity int) float64 {
	n := len(history)
	if n < 2 {
		return math.Inf(1)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, entry := range history {
		x := float64(i)
		y := float64(entry.NewQuantity)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return math.Inf(1)
	}
	slope := (float64(n)*sumXY - sumX*sumY) / denom
	if slope >= 0 || math.IsNaN(slope) {
		return math.Inf(1)
	}

	return math.Floor(float64(currentQuantity) / -slope)
}

// ExponentialForecast maintains a smoothed daily-usage estimate over
// consecutive decreasing pairs. The estimate is seeded at the first entry's
// quantity, as the original consumption model did.
func ExponentialForecast(history []models.QuantityChangeEvent, currentQuantity int, alpha float64) float64 {
	if len(history) == 0 {
		return math.Inf(1)
	}

	smoothed := float64(history[0].NewQuantity)
	for i := 1; i < len(history); i++ {
		prev, curr := history[i-1], history[i]
		if curr.NewQuantity >= prev.NewQuantity {
			continue
		}
		days := curr.OccurredAt.Sub(prev.OccurredAt).Hours() / 24
		if days <= 0 {
			continue
		}
		usage := float64(prev.NewQuantity - curr.NewQuantity)
		smoothed = alpha*(usage/days) + (1-alpha)*smoothed
	}

	if smoothed <= 0 || math.IsNaN(smoothed) {
		return math.Inf(1)
	}
	return math.Floor(float64(currentQuantity) / smoothed)
}

// MovingAverageForecast averages the last few daily-usage points from the
// decreasing-pair series.
func MovingAverageForecast(history []models.QuantityChangeEvent, currentQuantity int, window int) float64 {
	usages := dailyUsageSeries(history)
	if window <= 0 || len(usages) < window {
		return math.Inf(1)
	}

	var sum float64
	for _, usage := range usages[len(usages)-window:] {
		sum += usage
	}
	avg := sum / float64(window)
	if avg <= 0 || math.IsNaN(avg) {
		return math.Inf(1)
	}
	return math.Floor(float64(currentQuantity) / avg)
}

// dailyUsageSeries builds per-pair consumption rates: only pairs where the
// quantity decreased count, and only when real time passed between them.
func dailyUsageSeries(history []models.QuantityChangeEvent) []float64 {
	var usages []float64
	for i := 1; i < len(history); i++ {
		prev, curr := history[i-1], history[i]
		if curr.NewQuantity >= prev.NewQuantity {
			continue
		}
		days := curr.OccurredAt.Sub(prev.OccurredAt).Hours() / 24
		if days <= 0 {
			continue
		}
		usages = append(usages, float64(prev.NewQuantity-curr.NewQuantity)/days)
	}
	return usages
}
