package models

import (
	"time"
)

// AlertKind represents different types of stock alerts
type AlertKind string

const (
	AlertKindLowStock   AlertKind = "low_stock"
	AlertKindOutOfStock AlertKind = "no_stock"
	AlertKindPredictive AlertKind = "predictive"
)

// AlertSeverity represents alert severity levels
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
)

// idPrefixes maps each kind to its document id prefix. Ids derive only from
// (kind, item id), so regenerating alerts can never produce duplicates.
var idPrefixes = map[AlertKind]string{
	AlertKindLowStock:   "low-stock-",
	AlertKindOutOfStock: "no-stock-",
	AlertKindPredictive: "predictive-",
}

// AlertID returns the deterministic document id for this kind and item.
func (k AlertKind) AlertID(itemID string) string {
	return idPrefixes[k] + itemID
}

// Alert represents a stock alert document
type Alert struct {
	ID          string        `json:"id"`
	Kind        AlertKind     `json:"type"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	ItemID      string        `json:"itemId"`
	Severity    AlertSeverity `json:"severity"`
	Timestamp   time.Time     `json:"timestamp"`
	Read        bool          `json:"read"`
	Owner       string        `json:"owner"`
	ActionTaken bool          `json:"actionTaken"`
	Confidence  *int          `json:"confidence,omitempty"`
}
