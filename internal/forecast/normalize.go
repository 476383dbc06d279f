package forecast

import (
	"sort"
	"time"

	"stockhub/internal/models"
)

// timestampLayouts are tried in order when a history entry stores its date
// as a string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveTimestamp converts the timestamp shapes found in stored history
// entries into a time.Time. Resolution order: a value that already is a
// calendar instant, an object carrying epoch seconds (the shape the mobile
// client's document SDK writes), then anything parseable as a date. The
// second return is false when nothing resolves.
func ResolveTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case map[string]interface{}:
		for _, key := range []string{"seconds", "_seconds"} {
			secs, ok := t[key].(float64)
			if !ok {
				continue
			}
			var nanos int64
			for _, nkey := range []string{"nanoseconds", "_nanoseconds"} {
				if n, ok := t[nkey].(float64); ok {
					nanos = int64(n)
					break
				}
			}
			return time.Unix(int64(secs), nanos).UTC(), true
		}
		return time.Time{}, false
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		// Bare epoch values: milliseconds past ~5138 AD in seconds, so
		// anything that large is millisecond precision.
		if t > 1e11 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// NormalizeHistory converts raw stored entries into a chronologically
// ascending sequence of valid events. Entries without a resolvable
// timestamp or a newQuantity are dropped; ties keep their original order.
func NormalizeHistory(raw []models.HistoryEntry) []models.QuantityChangeEvent {
	events := make([]models.QuantityChangeEvent, 0, len(raw))
	for _, entry := range raw {
		if entry.NewQuantity == nil {
			continue
		}
		occurredAt, ok := ResolveTimestamp(entry.Date)
		if !ok {
			continue
		}
		event := models.QuantityChangeEvent{
			OccurredAt:  occurredAt,
			NewQuantity: *entry.NewQuantity,
		}
		if entry.PreviousQuantity != nil {
			event.PreviousQuantity = *entry.PreviousQuantity
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
	return events
}
