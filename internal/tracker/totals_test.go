package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

func TestTotalsSums(t *testing.T) {
	entries := []models.CampaignMetrics{
		{
			CampaignID:      "c1",
			DailyBudget:     5000,
			Spend:           100,
			PrimarySales:    2,
			UpsellSales:     1,
			TotalRevenue:    300,
			TotalCommission: 60,
			Profit:          -40,
			CPA:             50,
			CPM:             10,
			TicketBase:      125,
			Ticket:          150,
		},
		{
			CampaignID:      "c2",
			DailyBudget:     3000,
			Spend:           50,
			PrimarySales:    1,
			TotalRevenue:    200,
			TotalCommission: 100,
			Profit:          50,
			CPA:             50,
			CPM:             20,
			TicketBase:      200,
			Ticket:          200,
		},
		{CampaignID: "x", Orphan: true, TotalRevenue: 30, TotalCommission: 5, Profit: 5},
	}

	got := Totals(entries)

	assert.Equal(t, 2, got.Campaigns)
	assert.Equal(t, 1, got.OrphanGroups)
	assert.Equal(t, 3, got.PrimarySales)
	assert.Equal(t, 1, got.UpsellSales)
	assert.Equal(t, int64(8000), got.DailyBudget)
	assert.Equal(t, 150.0, got.Spend)
	assert.Equal(t, 530.0, got.TotalRevenue)
	assert.Equal(t, 165.0, got.TotalCommission)
	assert.Equal(t, 15.0, got.Profit)
}

// The portfolio CPA and CPM are plain averages over the rows, not weighted
// by spend or volume. A zero-CPA orphan row pulls the average down.
func TestTotalsAveragesAreUnweighted(t *testing.T) {
	entries := []models.CampaignMetrics{
		{CampaignID: "c1", CPA: 30, CPM: 12},
		{CampaignID: "c2", CPA: 60, CPM: 24},
		{CampaignID: "x", Orphan: true}, // CPA and CPM both zero
	}

	got := Totals(entries)
	assert.InDelta(t, 30.0, got.AvgCPA, 1e-9)
	assert.InDelta(t, 12.0, got.AvgCPM, 1e-9)
}

func TestTotalsBlendedROAS(t *testing.T) {
	entries := []models.CampaignMetrics{
		{CampaignID: "c1", Spend: 100, TotalCommission: 50},
		{CampaignID: "c2", Spend: 100, TotalCommission: 250},
	}

	got := Totals(entries)
	assert.InDelta(t, 1.5, float64(got.ROAS), 1e-9)
}

func TestTotalsROASInfiniteWithoutSpend(t *testing.T) {
	entries := []models.CampaignMetrics{
		{CampaignID: "x", Orphan: true, TotalCommission: 5, Profit: 5},
	}

	got := Totals(entries)
	assert.True(t, got.ROAS.IsInf())
}

func TestTotalsBlendedTickets(t *testing.T) {
	entries := []models.CampaignMetrics{
		{CampaignID: "c1", PrimarySales: 1, TicketBase: 100, Ticket: 120},
		{CampaignID: "c2", PrimarySales: 3, TicketBase: 200, Ticket: 200},
	}

	got := Totals(entries)
	// (100*1 + 200*3) / 4 and (120*1 + 200*3) / 4
	assert.InDelta(t, 175.0, got.TicketBase, 1e-9)
	assert.InDelta(t, 180.0, got.Ticket, 1e-9)
}

func TestTotalsEmpty(t *testing.T) {
	got := Totals(nil)
	assert.Zero(t, got.AvgCPA)
	assert.Zero(t, got.Ticket)
	assert.Equal(t, models.Ratio(0), got.ROAS)
}
