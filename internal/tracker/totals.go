package tracker

import (
	"github.com/trafficpulse/ads-tracker/internal/models"
)

// Totals folds per-campaign metrics into one portfolio row.
//
// CPA and CPM are unweighted arithmetic means over the entries, matching the
// dashboard's historical behavior rather than a spend-weighted mean; the
// blended ROAS and ticket values are recomputed from the underlying sums so
// they do not suffer the same averaging distortion.
func Totals(entries []models.CampaignMetrics) models.AggregateTotals {
	var t models.AggregateTotals

	var cpaSum, cpmSum float64
	var ticketBaseWeighted, ticketWeighted float64

	for _, m := range entries {
		if m.Orphan {
			t.OrphanGroups++
		} else {
			t.Campaigns++
		}

		t.PrimarySales += m.PrimarySales
		t.UpsellSales += m.UpsellSales
		t.OrderBumpSales += m.OrderBumpSales

		t.DailyBudget += m.DailyBudget
		t.Spend += m.Spend
		t.TotalRevenue += m.TotalRevenue
		t.TotalCommission += m.TotalCommission
		t.Profit += m.Profit

		cpaSum += m.CPA
		cpmSum += m.CPM
		ticketBaseWeighted += m.TicketBase * float64(m.PrimarySales)
		ticketWeighted += m.Ticket * float64(m.PrimarySales)
	}

	if n := len(entries); n > 0 {
		t.AvgCPA = cpaSum / float64(n)
		t.AvgCPM = cpmSum / float64(n)
	}
	if t.PrimarySales > 0 {
		t.TicketBase = ticketBaseWeighted / float64(t.PrimarySales)
		t.Ticket = ticketWeighted / float64(t.PrimarySales)
	}

	t.ROAS = roas(t.Spend, t.TotalCommission)

	return t
}
