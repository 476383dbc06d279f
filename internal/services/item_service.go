package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"stockhub/internal/caching"
	"stockhub/internal/docstore"
	"stockhub/internal/models"
)

const itemCacheTTL = 5 * time.Minute

type ItemService interface {
	Create(ctx context.Context, owner string, item *models.Item) error
	GetByID(ctx context.Context, owner, id string) (*models.Item, error)
	List(ctx context.Context, owner string) ([]models.Item, error)
	Update(ctx context.Context, owner string, item *models.Item) error
	AdjustQuantity(ctx context.Context, owner, id string, newQuantity int) (*models.Item, error)
	Delete(ctx context.Context, owner, id string) error
}

type itemService struct {
	store docstore.Store
	cache caching.CacheService
	now   func() time.Time
}

func NewItemService(store docstore.Store, cache caching.CacheService) ItemService {
	return &itemService{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

func (s *itemService) Create(ctx context.Context, owner string, item *models.Item) error {
	item.ID = uuid.New().String()
	item.Owner = owner
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt

	if err := s.store.Upsert(ctx, docstore.CollectionItems, item.ID, owner, item); err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

// GetByID returns the item only when it belongs to the owner; anything else
// reads as not found.
func (s *itemService) GetByID(ctx context.Context, owner, id string) (*models.Item, error) {
	doc, err := s.store.GetByID(ctx, docstore.CollectionItems, id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner {
		return nil, docstore.ErrNotFound
	}

	var item models.Item
	if err := doc.Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode item %s: %w", id, err)
	}
	item.ID = doc.ID
	return &item, nil
}

func (s *itemService) List(ctx context.Context, owner string) ([]models.Item, error) {
	if cached, err := s.cache.GetItems(ctx, owner); err == nil && cached != nil {
		return cached, nil
	}

	docs, err := s.store.QueryByOwner(ctx, docstore.CollectionItems, owner)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		var item models.Item
		if err := doc.Decode(&item); err != nil {
			log.Printf("Skipping undecodable item %s: %v", doc.ID, err)
			continue
		}
		item.ID = doc.ID
		items = append(items, item)
	}

	if cacheErr := s.cache.SetItems(ctx, owner, items, itemCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache items for %s: %v", owner, cacheErr)
	}
	return items, nil
}

func (s *itemService) Update(ctx context.Context, owner string, item *models.Item) error {
	existing, err := s.GetByID(ctx, owner, item.ID)
	if err != nil {
		return err
	}

	// Edit history is append-only; updates never rewrite it
	item.EditHistory = existing.EditHistory
	item.Owner = owner
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()

	if err := s.store.Upsert(ctx, docstore.CollectionItems, item.ID, owner, item); err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

// AdjustQuantity sets a new quantity and appends an immutable history event
// recording the change. The forecasting engine reads these events.
func (s *itemService) AdjustQuantity(ctx context.Context, owner, id string, newQuantity int) (*models.Item, error) {
	if newQuantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	item, err := s.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	previous := item.Quantity
	item.EditHistory = append(item.EditHistory, models.HistoryEntry{
		Date:             s.now().UTC().Format(time.RFC3339),
		PreviousQuantity: &previous,
		NewQuantity:      &newQuantity,
	})
	item.Quantity = newQuantity
	item.UpdatedAt = s.now()

	if err := s.store.Upsert(ctx, docstore.CollectionItems, item.ID, owner, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner)
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.GetByID(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, docstore.CollectionItems, id); err != nil {
		return err
	}
	s.invalidate(ctx, owner)
	return nil
}

func (s *itemService) invalidate(ctx context.Context, owner string) {
	if err := s.cache.DeleteItems(ctx, owner); err != nil {
		log.Printf("Failed to invalidate item cache for %s: %v", owner, err)
	}
}
