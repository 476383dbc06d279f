package models

import (
	"time"
)

// Summary represents the dashboard numbers for one owner
type Summary struct {
	Owner           string    `json:"owner"`
	ItemCount       int       `json:"itemCount"`
	TotalQuantity   int       `json:"totalQuantity"`
	LowStockCount   int       `json:"lowStockCount"`
	OutOfStockCount int       `json:"outOfStockCount"`
	UnreadAlerts    int       `json:"unreadAlerts"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// TrendPoint is one point of an item's quantity-over-time chart
type TrendPoint struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// TrendReport is the chart payload for a single item. DaysRemaining is nil
// when the forecast found no depletion trend.
type TrendReport struct {
	ItemID        string       `json:"itemId"`
	ItemName      string       `json:"itemName"`
	Points        []TrendPoint `json:"points"`
	DaysRemaining *int         `json:"daysRemaining,omitempty"`
	Confidence    int          `json:"confidence"`
}
