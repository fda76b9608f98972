package offer

import (
	"context"
	"errors"

	"github.com/offerhub/offerhub/internal/apperr"
)

var errOfferNotFound = apperr.NotFound("offer not found")

// Catalog answers read queries over offers.
type Catalog struct {
	repo Repository
}

// NewCatalog builds a catalog over repo.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Search returns one page of matching offers and the total match count.
func (c *Catalog) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	items, count, err := c.repo.Search(ctx, q)
	if err != nil {
		return SearchResult{}, apperr.Dependency("search offers", err)
	}
	if items == nil {
		items = []Summary{}
	}
	return SearchResult{Count: count, Offers: items}, nil
}

// GetByID returns the full offer.
func (c *Catalog) GetByID(ctx context.Context, id string) (Offer, error) {
	o, err := c.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Offer{}, errOfferNotFound
	}
	if err != nil {
		return Offer{}, apperr.Dependency("get offer", err)
	}
	return o, nil
}
