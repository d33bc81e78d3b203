package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/cache"
	"github.com/trafficpulse/ads-tracker/internal/models"
	"github.com/trafficpulse/ads-tracker/internal/storage"
)

type fakeCampaignSource struct {
	calls     atomic.Int64
	campaigns map[string][]*models.Campaign
	err       error
}

func (f *fakeCampaignSource) ListCampaigns(_ context.Context, accountID string, _ models.DatePreset) ([]*models.Campaign, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.campaigns[accountID], nil
}

type fakeSaleRepo struct {
	calls atomic.Int64
	sales []models.Sale
	err   error
}

func (f *fakeSaleRepo) ListSales(_ context.Context, _ storage.SaleFilter) ([]models.Sale, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.sales, nil
}

func newTestDashboard(source *fakeCampaignSource, sales *fakeSaleRepo, ttl time.Duration) *Dashboard {
	return NewDashboard(source, sales, cache.New(ttl), "111", []string{"111", "222"}, zap.NewNop(), nil)
}

func TestDashboardLoad(t *testing.T) {
	source := &fakeCampaignSource{campaigns: map[string][]*models.Campaign{
		"111": {{ID: "c1", Name: "Launch", Insights: models.Insights{Spend: 100}}},
		"222": {{ID: "c2", Name: "Other", Insights: models.Insights{Spend: 40}}},
	}}
	sales := &fakeSaleRepo{sales: []models.Sale{
		{CampaignID: "c1", Kind: models.SalePrimary, Amount: 200, Commission: 150, Platform: "kiwify"},
	}}

	d := newTestDashboard(source, sales, time.Minute)

	data, err := d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)

	require.Len(t, data.Campaigns, 1)
	assert.Equal(t, "c1", data.Campaigns[0].CampaignID)
	assert.Equal(t, 1, data.Totals.Campaigns)
	assert.Equal(t, 50.0, data.Totals.Profit)
	require.Len(t, data.Platforms, 1)
	assert.Equal(t, "kiwify", data.Platforms[0].Platform)
	assert.Nil(t, data.Errors)
}

func TestDashboardScopeAll(t *testing.T) {
	source := &fakeCampaignSource{campaigns: map[string][]*models.Campaign{
		"111": {{ID: "c1", Insights: models.Insights{Spend: 100}}},
		"222": {{ID: "c2", Insights: models.Insights{Spend: 40}}},
	}}
	d := newTestDashboard(source, &fakeSaleRepo{}, time.Minute)

	data, err := d.Load(context.Background(), ScopeAll, models.PresetToday)
	require.NoError(t, err)
	assert.Len(t, data.Campaigns, 2)
}

func TestDashboardCachesWithinTTL(t *testing.T) {
	source := &fakeCampaignSource{campaigns: map[string][]*models.Campaign{}}
	sales := &fakeSaleRepo{}
	d := newTestDashboard(source, sales, time.Minute)

	_, err := d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)
	// One call per account across the primary and all-accounts fetches.
	firstCampaignCalls := source.calls.Load()
	assert.Equal(t, int64(1), sales.calls.Load())

	_, err = d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)
	assert.Equal(t, firstCampaignCalls, source.calls.Load())
	assert.Equal(t, int64(1), sales.calls.Load())
}

func TestDashboardRefreshBypassesCache(t *testing.T) {
	source := &fakeCampaignSource{campaigns: map[string][]*models.Campaign{}}
	sales := &fakeSaleRepo{}
	d := newTestDashboard(source, sales, time.Minute)

	_, err := d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sales.calls.Load())

	_, err = d.Refresh(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sales.calls.Load())
}

func TestDashboardIsolatesResourceFailures(t *testing.T) {
	source := &fakeCampaignSource{err: errors.New("graph down")}
	sales := &fakeSaleRepo{sales: []models.Sale{
		{CampaignID: "c1", Kind: models.SalePrimary, Amount: 100, Commission: 20},
	}}
	d := newTestDashboard(source, sales, time.Minute)

	data, err := d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)

	// Sales survived; every sale shows up as an orphan group.
	require.Len(t, data.Campaigns, 1)
	assert.True(t, data.Campaigns[0].Orphan)

	require.NotNil(t, data.Errors)
	assert.Contains(t, data.Errors, "campaigns_primary")
	assert.Contains(t, data.Errors, "campaigns_all")
	assert.NotContains(t, data.Errors, "sales")
}

func TestDashboardSalesFailure(t *testing.T) {
	source := &fakeCampaignSource{campaigns: map[string][]*models.Campaign{
		"111": {{ID: "c1", Insights: models.Insights{Spend: 100}}},
	}}
	sales := &fakeSaleRepo{err: errors.New("db down")}
	d := newTestDashboard(source, sales, time.Minute)

	data, err := d.Load(context.Background(), ScopePrimary, models.PresetToday)
	require.NoError(t, err)

	require.Len(t, data.Campaigns, 1)
	assert.Zero(t, data.Campaigns[0].TotalRevenue)
	assert.Contains(t, data.Errors, "sales")
}

func TestParseScope(t *testing.T) {
	got, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopePrimary, got)

	got, err = ParseScope("all")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, got)

	_, err = ParseScope("everything")
	assert.Error(t, err)
}
