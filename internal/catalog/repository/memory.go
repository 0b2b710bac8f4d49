package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

// MemoryRepository is a threadsafe in-memory catalog, used by tests and by
// deployments that run without Postgres.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]model.Item
}

func NewMemoryRepository(items []model.Item) *MemoryRepository {
	m := make(map[string]model.Item, len(items))
	for _, it := range items {
		m[it.ItemID] = it
	}
	return &MemoryRepository{items: m}
}

func (r *MemoryRepository) GetItem(_ context.Context, itemID string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *MemoryRepository) ListItems(_ context.Context) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}
