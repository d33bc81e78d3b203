package tracker

import (
	"math"
	"sort"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

// orphanLabel names the synthetic group for sales that carry no campaign
// identifier at all.
const orphanLabel = "unattributed"

// Aggregate joins campaigns with their attributed sales and produces one
// CampaignMetrics per campaign that has either nonzero spend or nonzero
// attributed revenue, sorted by descending profit.
//
// Sales whose campaign identifier matches no fetched campaign are grouped by
// that identifier and synthesized into orphan entries with zero spend, so the
// attributed revenue and commission across the result always equal the sums
// over the full sales input. The same per-group computation runs for real
// and orphan groups.
func Aggregate(campaigns []*models.Campaign, sales []models.Sale) []models.CampaignMetrics {
	known := make(map[string]bool, len(campaigns))
	for _, c := range campaigns {
		known[c.ID] = true
	}

	salesByCampaign := make(map[string][]models.Sale)
	var orphanOrder []string
	for _, s := range sales {
		id := s.CampaignID
		if _, seen := salesByCampaign[id]; !seen && !known[id] {
			orphanOrder = append(orphanOrder, id)
		}
		salesByCampaign[id] = append(salesByCampaign[id], s)
	}

	result := make([]models.CampaignMetrics, 0, len(campaigns)+len(orphanOrder))

	for _, c := range campaigns {
		m := buildGroup(c, c.ID, salesByCampaign[c.ID])
		if m.Spend == 0 && m.TotalRevenue == 0 {
			continue
		}
		result = append(result, m)
	}

	for _, id := range orphanOrder {
		m := buildGroup(nil, id, salesByCampaign[id])
		if m.Spend == 0 && m.TotalRevenue == 0 {
			continue
		}
		result = append(result, m)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Profit > result[j].Profit
	})

	return result
}

// buildGroup computes the metrics of one campaign group. A nil campaign
// marks an orphan group: the identifier appeared on sales but no fetched
// campaign carries it, so spend and budget are zero.
func buildGroup(c *models.Campaign, id string, sales []models.Sale) models.CampaignMetrics {
	m := models.CampaignMetrics{
		CampaignID: id,
		Orphan:     c == nil,
	}

	if c != nil {
		m.CampaignName = c.Name
		m.AccountID = c.AccountID
		m.Status = c.Status
		m.DailyBudget = c.DailyBudget
		m.Spend = c.Insights.Spend
		m.CPM = c.Insights.CPM
		m.Impressions = c.Insights.Impressions
		m.Clicks = c.Insights.Clicks
		m.Checkouts = c.Insights.Checkouts()
	} else if id == "" {
		m.CampaignName = orphanLabel
	} else {
		m.CampaignName = id
	}

	for _, s := range sales {
		switch s.Kind {
		case models.SaleUpsell:
			m.UpsellSales++
			m.UpsellRevenue += s.Amount
		case models.SaleOrderBump:
			m.OrderBumpSales++
			m.OrderBumpRevenue += s.Amount
		default:
			m.PrimarySales++
			m.PrimaryRevenue += s.Amount
		}
		m.TotalCommission += s.Commission
	}
	m.TotalRevenue = m.PrimaryRevenue + m.UpsellRevenue + m.OrderBumpRevenue

	if m.Spend > 0 && m.PrimarySales > 0 {
		m.CPA = m.Spend / float64(m.PrimarySales)
	}
	if m.PrimarySales > 0 {
		m.TicketBase = m.PrimaryRevenue / float64(m.PrimarySales)
		m.Ticket = m.TotalRevenue / float64(m.PrimarySales)
	}
	if m.TicketBase > 0 {
		m.UpsellUpliftPct = (m.Ticket - m.TicketBase) / m.TicketBase * 100
	}

	m.ROAS = roas(m.Spend, m.TotalCommission)
	m.Profit = m.TotalCommission - m.Spend

	return m
}

// roas implements the dashboard's return-on-ad-spend convention: commission
// over spend, positive infinity for free commission, zero when there is
// neither.
func roas(spend, commission float64) models.Ratio {
	switch {
	case spend > 0:
		return models.Ratio(commission / spend)
	case commission > 0:
		return models.Ratio(math.Inf(1))
	default:
		return 0
	}
}
