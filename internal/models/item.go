package models

import (
	"time"
)

// HistoryEntry is a raw quantity-change record as stored in an item
// document. Entries written by older app versions may miss fields or carry
// timestamps in several shapes, so everything is optional here; validation
// happens in the forecast normalizer.
type HistoryEntry struct {
	Date             interface{} `json:"date,omitempty"`
	PreviousQuantity *int        `json:"previousQuantity,omitempty"`
	NewQuantity      *int        `json:"newQuantity,omitempty"`
}

// QuantityChangeEvent is a validated history entry with a resolved instant.
type QuantityChangeEvent struct {
	OccurredAt       time.Time
	PreviousQuantity int
	NewQuantity      int
}

// Item represents an inventory item document
type Item struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Quantity    int            `json:"quantity"`
	MinStock    *int           `json:"minStock,omitempty"`
	HubID       string         `json:"hubId,omitempty"`
	LocationID  string         `json:"locationId,omitempty"`
	Category    string         `json:"category,omitempty"`
	Owner       string         `json:"owner"`
	EditHistory []HistoryEntry `json:"editHistory,omitempty"`
	ImageObject string         `json:"imageObject,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// EffectiveMinStock returns the low-stock threshold, defaulting to 1 when
// the document has none.
func (i *Item) EffectiveMinStock() int {
	if i.MinStock == nil {
		return 1
	}
	return *i.MinStock
}

// Hub represents a top-level storage area owned by a user
type Hub struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Location represents a sub-area within a hub
type Location struct {
	ID        string    `json:"id"`
	HubID     string    `json:"hubId"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
