package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names used by the application.
const (
	CollectionItems     = "items"
	CollectionAlerts    = "alerts"
	CollectionHubs      = "hubs"
	CollectionLocations = "locations"
)

// ErrNotFound is returned by GetByID when no document has the given id.
var ErrNotFound = errors.New("docstore: document not found")

// Document is a stored record: an opaque id, the owning user, and the JSON
// body. Callers decode the body into their own model types.
type Document struct {
	ID    string
	Owner string
	Data  []byte
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v interface{}) error {
	return json.Unmarshal(d.Data, v)
}

// WriteKind discriminates batch operations.
type WriteKind int

const (
	WriteUpsert WriteKind = iota
	WriteDelete
)

// WriteOp is one operation in a batch write.
type WriteOp struct {
	Kind       WriteKind
	Collection string
	ID         string
	Owner      string
	Doc        interface{} // ignored for deletes
}

// Store is the document-store contract the engine and services depend on.
// Upserts are create-or-merge by id, so re-running a generation pass with
// deterministic ids is always safe.
type Store interface {
	QueryByOwner(ctx context.Context, collection, owner string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (*Document, error)
	Upsert(ctx context.Context, collection, id, owner string, doc interface{}) error
	DeleteByID(ctx context.Context, collection, id string) error
	BatchWrite(ctx context.Context, ops []WriteOp) error
}

// OwnerLister enumerates owners with documents in a collection. The
// background refresh uses it to fan out per-owner generation tasks; it is
// not part of the engine's own contract.
type OwnerLister interface {
	DistinctOwners(ctx context.Context, collection string) ([]string, error)
}
