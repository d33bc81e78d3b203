package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficpulse/ads-tracker/internal/models"
)

func platformSale(platform string, kind models.SaleKind, amount, commission float64) models.Sale {
	return models.Sale{
		Platform:   platform,
		Kind:       kind,
		Amount:     amount,
		Commission: commission,
	}
}

func TestPlatformBreakdown(t *testing.T) {
	sales := []models.Sale{
		platformSale("kiwify", models.SalePrimary, 100, 20),
		platformSale("kiwify", models.SalePrimary, 100, 20),
		platformSale("kiwify", models.SaleUpsell, 50, 10),
		platformSale("kiwify", models.SaleOrderBump, 30, 6),
		platformSale("hotmart", models.SalePrimary, 80, 16),
	}

	got := PlatformBreakdown(sales)
	require.Len(t, got, 2)

	// Ordered by total revenue.
	k := got[0]
	assert.Equal(t, "kiwify", k.Platform)
	assert.Equal(t, 2, k.PrimarySales)
	assert.Equal(t, 1, k.UpsellSales)
	assert.Equal(t, 1, k.OrderBumpSales)
	assert.Equal(t, 280.0, k.TotalRevenue)
	assert.Equal(t, 56.0, k.TotalCommission)
	assert.Equal(t, 140.0, k.Ticket)
	assert.InDelta(t, 25.0, k.UpsellImpactPct, 1e-9)
	assert.InDelta(t, 15.0, k.OrderBumpImpactPct, 1e-9)
	assert.InDelta(t, 40.0, k.TotalImpactPct, 1e-9)

	h := got[1]
	assert.Equal(t, "hotmart", h.Platform)
	assert.Zero(t, h.UpsellImpactPct)
}

func TestPlatformBreakdownEmptyPlatform(t *testing.T) {
	sales := []models.Sale{
		platformSale("", models.SalePrimary, 100, 20),
	}

	got := PlatformBreakdown(sales)
	require.Len(t, got, 1)
	assert.Equal(t, "unknown", got[0].Platform)
}

func TestPlatformBreakdownNoPrimaryRevenue(t *testing.T) {
	sales := []models.Sale{
		platformSale("kiwify", models.SaleUpsell, 50, 10),
	}

	got := PlatformBreakdown(sales)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].UpsellImpactPct)
	assert.Zero(t, got[0].Ticket)
	assert.Equal(t, 50.0, got[0].TotalRevenue)
}

func TestPlatformBreakdownEmptyInput(t *testing.T) {
	assert.Empty(t, PlatformBreakdown(nil))
}
