package storage

import (
	"context"
	"time"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

// SaleFilter narrows a sales query. Zero values mean "no constraint".
type SaleFilter struct {
	CampaignID string
	From       time.Time
	To         time.Time // exclusive
}

// SaleRepo defines read operations over the sales store. Sales are immutable
// once created; the tracker only reads and aggregates, never mutates.
type SaleRepo interface {
	// ListSales returns sales matching the filter, newest first.
	ListSales(ctx context.Context, filter SaleFilter) ([]models.Sale, error)
}
