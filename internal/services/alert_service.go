package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"stockhub/internal/caching"
	"stockhub/internal/docstore"
	"stockhub/internal/models"
)

const alertCacheTTL = 2 * time.Minute

// AlertService covers the user-facing alert lifecycle: listing, read/ack
// flags, and deletion. Alert creation belongs to the generator, which never
// touches these flags afterwards.
type AlertService interface {
	List(ctx context.Context, owner string) ([]models.Alert, error)
	MarkRead(ctx context.Context, owner, id string) error
	MarkActionTaken(ctx context.Context, owner, id string) error
	Delete(ctx context.Context, owner, id string) error
}

type alertService struct {
	store docstore.Store
	cache caching.CacheService
}

func NewAlertService(store docstore.Store, cache caching.CacheService) AlertService {
	return &alertService{store: store, cache: cache}
}

func (s *alertService) List(ctx context.Context, owner string) ([]models.Alert, error) {
	if cached, err := s.cache.GetAlerts(ctx, owner); err == nil && cached != nil {
		return cached, nil
	}

	docs, err := s.store.QueryByOwner(ctx, docstore.CollectionAlerts, owner)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0, len(docs))
	for _, doc := range docs {
		var alert models.Alert
		if err := doc.Decode(&alert); err != nil {
			log.Printf("Skipping undecodable alert %s: %v", doc.ID, err)
			continue
		}
		alert.ID = doc.ID
		alerts = append(alerts, alert)
	}

	if cacheErr := s.cache.SetAlerts(ctx, owner, alerts, alertCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache alerts for %s: %v", owner, cacheErr)
	}
	return alerts, nil
}

func (s *alertService) MarkRead(ctx context.Context, owner, id string) error {
	return s.patch(ctx, owner, id, map[string]interface{}{"read": true})
}

func (s *alertService) MarkActionTaken(ctx context.Context, owner, id string) error {
	return s.patch(ctx, owner, id, map[string]interface{}{"actionTaken": true, "read": true})
}

func (s *alertService) Delete(ctx context.Context, owner, id string) error {
	if err := s.checkOwnership(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, docstore.CollectionAlerts, id); err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

// patch merges a partial document into the alert; upserts are create-or-
// merge, so untouched fields survive.
func (s *alertService) patch(ctx context.Context, owner, id string, fields map[string]interface{}) error {
	if err := s.checkOwnership(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, docstore.CollectionAlerts, id, owner, fields); err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	s.invalidate(ctx, owner)
	return nil
}

func (s *alertService) checkOwnership(ctx context.Context, owner, id string) error {
	doc, err := s.store.GetByID(ctx, docstore.CollectionAlerts, id)
	if err != nil {
		return err
	}
	if doc.Owner != owner {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *alertService) invalidate(ctx context.Context, owner string) {
	if err := s.cache.DeleteAlerts(ctx, owner); err != nil {
		log.Printf("Failed to invalidate alert cache for %s: %v", owner, err)
	}
}
