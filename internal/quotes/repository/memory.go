package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/munderdifflin/fulfillment-service/internal/model"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	records []model.QuoteRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, record *model.QuoteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, *record)
	return nil
}

func (r *MemoryRepository) Search(_ context.Context, terms []string, limit int) ([]model.QuoteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []model.QuoteRecord
	for _, rec := range r.records {
		if matchesAll(rec.Explanation, terms) {
			matches = append(matches, rec)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchesAll(explanation string, terms []string) bool {
	lowered := strings.ToLower(explanation)
	for _, term := range terms {
		if !strings.Contains(lowered, strings.ToLower(term)) {
			return false
		}
	}
	return true
}
