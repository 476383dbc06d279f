package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"stockhub/internal/alerts"
)

// Task type definitions
const (
	TypeAlertsGenerate = "alerts:generate"
)

// AlertsGeneratePayload defines the payload for alert generation tasks
type AlertsGeneratePayload struct {
	Owner string `json:"owner"`
}

// NewAlertsGenerateTask creates a task that runs one generation pass for an
// owner. Duplicate enqueues are harmless: passes are idempotent.
func NewAlertsGenerateTask(owner string) (*asynq.Task, error) {
	payload, err := json.Marshal(AlertsGeneratePayload{Owner: owner})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alerts generate payload: %w", err)
	}
	return asynq.NewTask(TypeAlertsGenerate, payload, asynq.MaxRetry(3)), nil
}

// RefreshHandler processes queued alert generation tasks.
type RefreshHandler struct {
	generator *alerts.Generator
}

func NewRefreshHandler(generator *alerts.Generator) *RefreshHandler {
	return &RefreshHandler{generator: generator}
}

// Register attaches the handler to an asynq mux.
func (h *RefreshHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeAlertsGenerate, h.HandleAlertsGenerate)
}

// HandleAlertsGenerate runs one pass for the owner in the payload.
func (h *RefreshHandler) HandleAlertsGenerate(ctx context.Context, t *asynq.Task) error {
	var payload AlertsGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal alerts generate payload: %w", err)
	}

	result, err := h.generator.Generate(ctx, payload.Owner)
	if err != nil {
		log.Printf("Queued alert generation failed for %s: %v", payload.Owner, err)
		return err
	}

	log.Printf("Queued alert generation for %s: %d items, %d new alerts",
		payload.Owner, result.ItemsProcessed, len(result.NewAlerts))
	return nil
}
