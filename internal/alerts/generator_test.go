package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockhub/internal/docstore"
	"stockhub/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) QueryByOwner(ctx context.Context, collection, owner string) ([]docstore.Document, error) {
	args := m.Called(ctx, collection, owner)
	if docs := args.Get(0); docs != nil {
		return docs.([]docstore.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, collection, id string) (*docstore.Document, error) {
	args := m.Called(ctx, collection, id)
	if doc := args.Get(0); doc != nil {
		return doc.(*docstore.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Upsert(ctx context.Context, collection, id, owner string, doc interface{}) error {
	args := m.Called(ctx, collection, id, owner, doc)
	return args.Error(0)
}

func (m *mockStore) DeleteByID(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *mockStore) BatchWrite(ctx context.Context, ops []docstore.WriteOp) error {
	args := m.Called(ctx, ops)
	return args.Error(0)
}

func intPtr(v int) *int {
	return &v
}

func itemDoc(t *testing.T, item models.Item) docstore.Document {
	t.Helper()
	body, err := json.Marshal(item)
	require.NoError(t, err)
	return docstore.Document{ID: item.ID, Owner: item.Owner, Data: body}
}

// rawHistory builds one entry per day ending at end, RFC 3339 timestamps.
func rawHistory(end time.Time, quantities ...int) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, len(quantities))
	for i, q := range quantities {
		quantity := q
		date := end.AddDate(0, 0, i-len(quantities)+1)
		entries[i] = models.HistoryEntry{
			Date:        date.Format(time.RFC3339),
			NewQuantity: &quantity,
		}
	}
	return entries
}

func newTestGenerator(store *mockStore, now time.Time) *Generator {
	g := NewGenerator(store, DefaultConfig())
	g.now = func() time.Time { return now }
	return g
}

func TestGenerate_RequiresOwner(t *testing.T) {
	store := new(mockStore)
	g := newTestGenerator(store, time.Now())

	result, err := g.Generate(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, result)
	store.AssertNotCalled(t, "QueryByOwner")
}

func TestGenerate_ThresholdBoundaries(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	items := []docstore.Document{
		itemDoc(t, models.Item{ID: "at-threshold", Name: "Rice", Quantity: 5, MinStock: intPtr(5), Owner: owner}),
		itemDoc(t, models.Item{ID: "above-threshold", Name: "Beans", Quantity: 6, MinStock: intPtr(5), Owner: owner}),
		itemDoc(t, models.Item{ID: "empty", Name: "Flour", Quantity: 0, MinStock: intPtr(5), Owner: owner}),
	}
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).Return(items, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return([]docstore.Document(nil), nil)
	store.On("BatchWrite", mock.Anything, mock.MatchedBy(func(ops []docstore.WriteOp) bool {
		return len(ops) == 2
	})).Return(nil)

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, 3, result.ItemsProcessed)
	require.Len(t, result.NewAlerts, 2)

	byID := make(map[string]models.Alert, len(result.NewAlerts))
	for _, a := range result.NewAlerts {
		byID[a.ID] = a
	}

	low, ok := byID["low-stock-at-threshold"]
	require.True(t, ok, "quantity at threshold must raise a low-stock alert")
	assert.Equal(t, models.AlertKindLowStock, low.Kind)
	assert.Equal(t, models.SeverityHigh, low.Severity)

	out, ok := byID["no-stock-empty"]
	require.True(t, ok)
	assert.Equal(t, models.AlertKindOutOfStock, out.Kind)
	assert.Equal(t, models.SeverityMedium, out.Severity)

	_, lowForEmpty := byID["low-stock-empty"]
	assert.False(t, lowForEmpty, "a fully empty item is out of stock, not low")

	store.AssertExpectations(t)
}

func TestGenerate_PredictiveAlert(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	item := models.Item{
		ID:          "item-1",
		Name:        "Coffee",
		Quantity:    10,
		MinStock:    intPtr(1),
		Owner:       owner,
		EditHistory: rawHistory(now.AddDate(0, 0, -1), 100, 90, 80, 70, 60, 50, 40, 30, 20, 10),
	}
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).Return([]docstore.Document{itemDoc(t, item)}, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return([]docstore.Document(nil), nil)
	store.On("BatchWrite", mock.Anything, mock.MatchedBy(func(ops []docstore.WriteOp) bool {
		return len(ops) == 1 && ops[0].ID == "predictive-item-1" && ops[0].Kind == docstore.WriteUpsert
	})).Return(nil)

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, result.NewAlerts, 1)

	alert := result.NewAlerts[0]
	assert.Equal(t, "predictive-item-1", alert.ID)
	assert.Equal(t, models.AlertKindPredictive, alert.Kind)
	assert.Equal(t, models.SeverityHigh, alert.Severity, "a sub-five-day runway is urgent")
	require.NotNil(t, alert.Confidence)
	assert.Greater(t, *alert.Confidence, 0)
	assert.LessOrEqual(t, *alert.Confidence, 100)

	store.AssertExpectations(t)
}

func TestGenerate_HistoryGating(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	// Nine raw entries: below the raw minimum despite a clear trend.
	tooFewRaw := models.Item{
		ID:          "few-raw",
		Name:        "Sugar",
		Quantity:    10,
		MinStock:    intPtr(1),
		Owner:       owner,
		EditHistory: rawHistory(now.AddDate(0, 0, -1), 90, 80, 70, 60, 50, 40, 30, 20, 10),
	}

	// Ten raw entries but four are unusable, leaving six valid.
	fewValid := models.Item{
		ID:       "few-valid",
		Name:     "Salt",
		Quantity: 10,
		MinStock: intPtr(1),
		Owner:    owner,
		EditHistory: append(
			rawHistory(now.AddDate(0, 0, -1), 60, 50, 40, 30, 20, 10),
			models.HistoryEntry{Date: "garbage", NewQuantity: intPtr(5)},
			models.HistoryEntry{Date: "garbage", NewQuantity: intPtr(4)},
			models.HistoryEntry{NewQuantity: intPtr(3)},
			models.HistoryEntry{Date: "2025-03-01T00:00:00Z"},
		),
	}

	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).
		Return([]docstore.Document{itemDoc(t, tooFewRaw), itemDoc(t, fewValid)}, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return([]docstore.Document(nil), nil)

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemsProcessed)
	assert.Empty(t, result.NewAlerts)
	store.AssertNotCalled(t, "BatchWrite")
}

func TestGenerate_SlowDepletionStaysQuiet(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	// One unit a day with 100 on hand: far beyond the alert horizon.
	item := models.Item{
		ID:          "slow",
		Name:        "Tea",
		Quantity:    100,
		MinStock:    intPtr(1),
		Owner:       owner,
		EditHistory: rawHistory(now.AddDate(0, 0, -1), 109, 108, 107, 106, 105, 104, 103, 102, 101, 100),
	}
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).Return([]docstore.Document{itemDoc(t, item)}, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return([]docstore.Document(nil), nil)

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.NoError(t, err)
	assert.Empty(t, result.NewAlerts)
	store.AssertNotCalled(t, "BatchWrite")
}

func TestGenerate_SecondPassWritesNothing(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	items := []docstore.Document{
		itemDoc(t, models.Item{ID: "at-threshold", Name: "Rice", Quantity: 5, MinStock: intPtr(5), Owner: owner}),
		itemDoc(t, models.Item{ID: "empty", Name: "Flour", Quantity: 0, Owner: owner}),
	}
	existing := []docstore.Document{
		{ID: "low-stock-at-threshold", Owner: owner, Data: []byte(`{}`)},
		{ID: "no-stock-empty", Owner: owner, Data: []byte(`{}`)},
	}
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).Return(items, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return(existing, nil)

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemsProcessed)
	assert.Empty(t, result.NewAlerts)
	store.AssertNotCalled(t, "BatchWrite")
}

func TestGenerate_BatchFailureSurfacesOneError(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	store := new(mockStore)
	owner := "user@example.com"

	items := []docstore.Document{
		itemDoc(t, models.Item{ID: "empty", Name: "Flour", Quantity: 0, Owner: owner}),
	}
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).Return(items, nil)
	store.On("QueryByOwner", mock.Anything, docstore.CollectionAlerts, owner).Return([]docstore.Document(nil), nil)
	store.On("BatchWrite", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	g := newTestGenerator(store, now)
	result, err := g.Generate(context.Background(), owner)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGenerate_StoreReadFailure(t *testing.T) {
	store := new(mockStore)
	owner := "user@example.com"
	store.On("QueryByOwner", mock.Anything, docstore.CollectionItems, owner).
		Return(nil, errors.New("timeout"))

	g := newTestGenerator(store, time.Now())
	_, err := g.Generate(context.Background(), owner)

	assert.Error(t, err)
}
