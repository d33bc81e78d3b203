package models

import (
	"strings"
	"time"
)

// SaleKind is the closed classification of a sale. It is assigned once at
// ingestion time by ParseSaleKind; downstream aggregation never looks at the
// free-text type again.
type SaleKind string

const (
	SalePrimary   SaleKind = "primary"
	SaleUpsell    SaleKind = "upsell"
	SaleOrderBump SaleKind = "order_bump"
)

// ParseSaleKind maps the sales platform's free-text "type" field to a
// SaleKind. The contract, matching what the platforms actually send:
//
//   - empty string and "main" are primary sales
//   - any value containing "upsell" (case-insensitive) is an upsell, even if
//     it also contains "bump"; the upsell check runs first
//   - any value containing "orderbump", "order-bump", "order bump" or plain
//     "bump" is an order bump
//   - everything else falls back to primary
func ParseSaleKind(raw string) SaleKind {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case t == "" || t == "main":
		return SalePrimary
	case strings.Contains(t, "upsell"):
		return SaleUpsell
	case strings.Contains(t, "orderbump"),
		strings.Contains(t, "order-bump"),
		strings.Contains(t, "order bump"),
		strings.Contains(t, "bump"):
		return SaleOrderBump
	}
	return SalePrimary
}

// Sale is an immutable sales record read from the sales store. Amount is the
// gross value paid by the customer, Commission the portion owed to the
// account being tracked.
type Sale struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Amount     float64   `json:"amount"`
	Commission float64   `json:"commission"`
	Kind       SaleKind  `json:"kind"`
	// RawType preserves the original free-text classification for audit.
	RawType string `json:"raw_type,omitempty"`
	// CampaignID correlates the sale to an ad campaign; may be empty when
	// the tracking parameters were lost.
	CampaignID    string `json:"campaign_id,omitempty"`
	Platform      string `json:"platform,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}
