package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"stockhub/internal/docstore"
	"stockhub/internal/models"
)

type HubService interface {
	CreateHub(ctx context.Context, owner string, hub *models.Hub) error
	ListHubs(ctx context.Context, owner string) ([]models.Hub, error)
	UpdateHub(ctx context.Context, owner string, hub *models.Hub) error
	DeleteHub(ctx context.Context, owner, id string) error

	CreateLocation(ctx context.Context, owner string, location *models.Location) error
	ListLocations(ctx context.Context, owner, hubID string) ([]models.Location, error)
	DeleteLocation(ctx context.Context, owner, id string) error
}

type hubService struct {
	store docstore.Store
	now   func() time.Time
}

func NewHubService(store docstore.Store) HubService {
	return &hubService{store: store, now: time.Now}
}

func (s *hubService) CreateHub(ctx context.Context, owner string, hub *models.Hub) error {
	hub.ID = uuid.New().String()
	hub.Owner = owner
	hub.CreatedAt = s.now()
	return s.store.Upsert(ctx, docstore.CollectionHubs, hub.ID, owner, hub)
}

func (s *hubService) ListHubs(ctx context.Context, owner string) ([]models.Hub, error) {
	docs, err := s.store.QueryByOwner(ctx, docstore.CollectionHubs, owner)
	if err != nil {
		return nil, err
	}

	hubs := make([]models.Hub, 0, len(docs))
	for _, doc := range docs {
		var hub models.Hub
		if err := doc.Decode(&hub); err != nil {
			log.Printf("Skipping undecodable hub %s: %v", doc.ID, err)
			continue
		}
		hub.ID = doc.ID
		hubs = append(hubs, hub)
	}
	return hubs, nil
}

func (s *hubService) UpdateHub(ctx context.Context, owner string, hub *models.Hub) error {
	if err := s.checkOwnership(ctx, docstore.CollectionHubs, owner, hub.ID); err != nil {
		return err
	}
	hub.Owner = owner
	return s.store.Upsert(ctx, docstore.CollectionHubs, hub.ID, owner, hub)
}

// DeleteHub removes the hub and every location under it.
func (s *hubService) DeleteHub(ctx context.Context, owner, id string) error {
	if err := s.checkOwnership(ctx, docstore.CollectionHubs, owner, id); err != nil {
		return err
	}

	locations, err := s.ListLocations(ctx, owner, id)
	if err != nil {
		return err
	}

	ops := []docstore.WriteOp{{
		Kind:       docstore.WriteDelete,
		Collection: docstore.CollectionHubs,
		ID:         id,
	}}
	for _, location := range locations {
		ops = append(ops, docstore.WriteOp{
			Kind:       docstore.WriteDelete,
			Collection: docstore.CollectionLocations,
			ID:         location.ID,
		})
	}
	return s.store.BatchWrite(ctx, ops)
}

func (s *hubService) CreateLocation(ctx context.Context, owner string, location *models.Location) error {
	if err := s.checkOwnership(ctx, docstore.CollectionHubs, owner, location.HubID); err != nil {
		return fmt.Errorf("hub %s: %w", location.HubID, err)
	}

	location.ID = uuid.New().String()
	location.Owner = owner
	location.CreatedAt = s.now()
	return s.store.Upsert(ctx, docstore.CollectionLocations, location.ID, owner, location)
}

// ListLocations returns the owner's locations, filtered to one hub when
// hubID is non-empty.
func (s *hubService) ListLocations(ctx context.Context, owner, hubID string) ([]models.Location, error) {
	docs, err := s.store.QueryByOwner(ctx, docstore.CollectionLocations, owner)
	if err != nil {
		return nil, err
	}

	locations := make([]models.Location, 0, len(docs))
	for _, doc := range docs {
		var location models.Location
		if err := doc.Decode(&location); err != nil {
			log.Printf("Skipping undecodable location %s: %v", doc.ID, err)
			continue
		}
		if hubID != "" && location.HubID != hubID {
			continue
		}
		location.ID = doc.ID
		locations = append(locations, location)
	}
	return locations, nil
}

func (s *hubService) DeleteLocation(ctx context.Context, owner, id string) error {
	if err := s.checkOwnership(ctx, docstore.CollectionLocations, owner, id); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, docstore.CollectionLocations, id)
}

func (s *hubService) checkOwnership(ctx context.Context, collection, owner, id string) error {
	doc, err := s.store.GetByID(ctx, collection, id)
	if err != nil {
		return err
	}
	if doc.Owner != owner {
		return docstore.ErrNotFound
	}
	return nil
}
