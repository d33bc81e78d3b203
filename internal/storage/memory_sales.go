package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

// InMemorySaleRepo is a simple in-memory implementation of SaleRepo. It is
// used when PostgreSQL is unavailable and in tests.
type InMemorySaleRepo struct {
	mu    sync.RWMutex
	sales []models.Sale
}

// NewInMemorySaleRepo creates a new empty in-memory sale repo.
func NewInMemorySaleRepo() *InMemorySaleRepo {
	return &InMemorySaleRepo{}
}

// Add stores sales, classifying the free-text type on the way in.
func (r *InMemorySaleRepo) Add(sales ...models.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range sales {
		if s.Kind == "" {
			s.Kind = models.ParseSaleKind(s.RawType)
		}
		r.sales = append(r.sales, s)
	}
}

// ListSales returns sales matching the filter, newest first.
func (r *InMemorySaleRepo) ListSales(_ context.Context, filter SaleFilter) ([]models.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]models.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		if filter.CampaignID != "" && s.CampaignID != filter.CampaignID {
			continue
		}
		if !filter.From.IsZero() && s.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.CreatedAt.Before(filter.To) {
			continue
		}
		res = append(res, s)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}
