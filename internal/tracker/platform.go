package tracker

import (
	"sort"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

// unknownPlatform labels sales whose platform field is empty.
const unknownPlatform = "unknown"

// PlatformBreakdown groups sales by the platform that processed them,
// independent of any campaign data, and reports per-platform revenue and
// how much the upsell and order-bump revenue added on top of primary
// revenue. Results are ordered by descending total revenue.
func PlatformBreakdown(sales []models.Sale) []models.PlatformMetrics {
	groups := make(map[string]*models.PlatformMetrics)
	var order []string

	for _, s := range sales {
		name := s.Platform
		if name == "" {
			name = unknownPlatform
		}

		p, ok := groups[name]
		if !ok {
			p = &models.PlatformMetrics{Platform: name}
			groups[name] = p
			order = append(order, name)
		}

		switch s.Kind {
		case models.SaleUpsell:
			p.UpsellSales++
			p.UpsellRevenue += s.Amount
		case models.SaleOrderBump:
			p.OrderBumpSales++
			p.OrderBumpRevenue += s.Amount
		default:
			p.PrimarySales++
			p.PrimaryRevenue += s.Amount
		}
		p.TotalCommission += s.Commission
	}

	result := make([]models.PlatformMetrics, 0, len(groups))
	for _, name := range order {
		p := groups[name]
		p.TotalRevenue = p.PrimaryRevenue + p.UpsellRevenue + p.OrderBumpRevenue

		if p.PrimarySales > 0 {
			p.Ticket = p.TotalRevenue / float64(p.PrimarySales)
		}
		if p.PrimaryRevenue > 0 {
			p.UpsellImpactPct = p.UpsellRevenue / p.PrimaryRevenue * 100
			p.OrderBumpImpactPct = p.OrderBumpRevenue / p.PrimaryRevenue * 100
			p.TotalImpactPct = (p.UpsellRevenue + p.OrderBumpRevenue) / p.PrimaryRevenue * 100
		}

		result = append(result, *p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalRevenue > result[j].TotalRevenue
	})

	return result
}
