package offer

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	offers map[string]Offer
	order  []string
}

// NewMemoryRepository builds an in-memory offer store for development and tests.
// Owner profiles are kept as given at creation time.
func NewMemoryRepository() Repository {
	return &memoryRepository{offers: make(map[string]Offer)}
}

func (r *memoryRepository) Create(_ context.Context, o Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[o.ID] = o
	r.order = append(r.order, o.ID)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.offers[id]
	if !ok {
		return Offer{}, ErrNotFound
	}
	return o, nil
}

func (r *memoryRepository) Update(_ context.Context, o Offer, changed []Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.offers[o.ID]
	if !ok {
		return ErrNotFound
	}
	for _, f := range changed {
		switch f {
		case FieldTitle:
			stored.Title = o.Title
		case FieldDescription:
			stored.Description = o.Description
		case FieldPrice:
			stored.Price = o.Price
		case FieldDetails:
			stored.Details = o.Details
		case FieldImage:
			stored.Image = o.Image
		}
	}
	stored.UpdatedAt = o.UpdatedAt
	r.offers[o.ID] = stored
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return ErrNotFound
	}
	delete(r.offers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRepository) Search(_ context.Context, q SearchQuery) ([]Summary, int, error) {
	r.mu.RLock()
	matches := make([]Offer, 0, len(r.order))
	for _, id := range r.order {
		if o := r.offers[id]; q.Matches(o) {
			matches = append(matches, o)
		}
	}
	r.mu.RUnlock()

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price > matches[j].Price })
	}

	count := len(matches)
	start := q.Offset()
	if start > count {
		start = count
	}
	end := count
	if q.Limit > 0 && end-start > q.Limit {
		end = start + q.Limit
	}

	items := make([]Summary, 0, end-start)
	for _, o := range matches[start:end] {
		items = append(items, o.Summary())
	}
	return items, count, nil
}
