package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/cache"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
	"github.com/trafficpulse/ads-tracker/internal/models"
	"github.com/trafficpulse/ads-tracker/internal/storage"
)

// Scope selects which campaign set feeds the aggregation.
type Scope string

const (
	// ScopePrimary aggregates only the primary ad account.
	ScopePrimary Scope = "primary"
	// ScopeAll aggregates every configured ad account.
	ScopeAll Scope = "all"
)

// ParseScope maps the query parameter to a scope; empty means primary.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopePrimary:
		return ScopePrimary, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// Resource names used for cache keys, error reporting and metrics labels.
const (
	resourceCampaignsPrimary = "campaigns_primary"
	resourceCampaignsAll     = "campaigns_all"
	resourceSales            = "sales"
)

// CampaignSource fetches campaigns with insights for one ad account.
type CampaignSource interface {
	ListCampaigns(ctx context.Context, accountID string, preset models.DatePreset) ([]*models.Campaign, error)
}

// Dashboard assembles the tracker's aggregated view: campaigns from the
// Graph API joined with sales from storage. All three upstream fetches run
// concurrently and independently; a failure in one leaves the others usable
// and is reported in the Errors map instead of failing the whole load.
type Dashboard struct {
	source  CampaignSource
	sales   storage.SaleRepo
	cache   *cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics

	primaryAccount string
	accounts       []string

	now func() time.Time
}

// NewDashboard constructs the dashboard service. accounts is the full set of
// ad accounts in scope; primaryAccount is included even if absent from it.
func NewDashboard(
	source CampaignSource,
	sales storage.SaleRepo,
	c *cache.Cache,
	primaryAccount string,
	accounts []string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Dashboard {
	return &Dashboard{
		source:         source,
		sales:          sales,
		cache:          c,
		logger:         logger,
		metrics:        m,
		primaryAccount: primaryAccount,
		accounts:       accounts,
		now:            time.Now,
	}
}

// Data is one assembled dashboard response.
type Data struct {
	Scope     Scope                    `json:"scope"`
	Period    models.DatePreset        `json:"period"`
	Campaigns []models.CampaignMetrics `json:"campaigns"`
	Totals    models.AggregateTotals   `json:"totals"`
	Platforms []models.PlatformMetrics `json:"platforms"`
	// Errors maps a failed resource name to its error message. Entries
	// here mean the corresponding data is missing from this response.
	Errors    map[string]string `json:"errors,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Load fetches (or serves from cache) everything the dashboard needs for the
// given scope and period and aggregates it.
func (d *Dashboard) Load(ctx context.Context, scope Scope, preset models.DatePreset) (*Data, error) {
	var (
		wg sync.WaitGroup

		primaryCampaigns []*models.Campaign
		allCampaigns     []*models.Campaign
		sales            []models.Sale

		primaryErr error
		allErr     error
		salesErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		primaryCampaigns, primaryErr = d.fetchAccountCampaigns(ctx, resourceCampaignsPrimary, []string{d.primaryAccount}, preset)
	}()
	go func() {
		defer wg.Done()
		allCampaigns, allErr = d.fetchAccountCampaigns(ctx, resourceCampaignsAll, d.allAccounts(), preset)
	}()
	go func() {
		defer wg.Done()
		sales, salesErr = d.fetchSales(ctx, preset)
	}()
	wg.Wait()

	data := &Data{
		Scope:     scope,
		Period:    preset,
		Errors:    map[string]string{},
		FetchedAt: d.now(),
	}

	campaigns := primaryCampaigns
	if scope == ScopeAll {
		campaigns = allCampaigns
	}

	d.recordResourceError(data, resourceCampaignsPrimary, primaryErr)
	d.recordResourceError(data, resourceCampaignsAll, allErr)
	d.recordResourceError(data, resourceSales, salesErr)

	data.Campaigns = Aggregate(campaigns, sales)
	data.Totals = Totals(data.Campaigns)
	data.Platforms = PlatformBreakdown(sales)

	if len(data.Errors) == 0 {
		data.Errors = nil
	}

	if d.metrics != nil {
		d.metrics.RecordDashboardLoad(string(scope), string(preset))
		if salesErr == nil {
			d.metrics.SalesRowsLoaded.Set(float64(len(sales)))
		}
	}

	return data, nil
}

// Refresh drops every cached fetch and loads fresh data.
func (d *Dashboard) Refresh(ctx context.Context, scope Scope, preset models.DatePreset) (*Data, error) {
	d.cache.Clear()
	return d.Load(ctx, scope, preset)
}

// Campaigns returns the raw campaign list for the given scope, served from
// the same cache as Load.
func (d *Dashboard) Campaigns(ctx context.Context, scope Scope, preset models.DatePreset) ([]*models.Campaign, error) {
	if scope == ScopeAll {
		return d.fetchAccountCampaigns(ctx, resourceCampaignsAll, d.allAccounts(), preset)
	}
	return d.fetchAccountCampaigns(ctx, resourceCampaignsPrimary, []string{d.primaryAccount}, preset)
}

func (d *Dashboard) allAccounts() []string {
	accounts := make([]string, 0, len(d.accounts)+1)
	seen := map[string]bool{}
	for _, id := range append([]string{d.primaryAccount}, d.accounts...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		accounts = append(accounts, id)
	}
	return accounts
}

func (d *Dashboard) fetchAccountCampaigns(ctx context.Context, resource string, accountIDs []string, preset models.DatePreset) ([]*models.Campaign, error) {
	key := cache.Key(resource, "", string(preset))
	if v, ok := d.cache.Get(key); ok {
		if d.metrics != nil {
			d.metrics.RecordCacheHit(resource)
		}
		return v.([]*models.Campaign), nil
	}
	if d.metrics != nil {
		d.metrics.RecordCacheMiss(resource)
	}

	var campaigns []*models.Campaign
	for _, accountID := range accountIDs {
		got, err := d.source.ListCampaigns(ctx, accountID, preset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch campaigns for account %s: %w", accountID, err)
		}
		campaigns = append(campaigns, got...)
	}

	d.cache.Set(key, campaigns)
	return campaigns, nil
}

func (d *Dashboard) fetchSales(ctx context.Context, preset models.DatePreset) ([]models.Sale, error) {
	key := cache.Key(resourceSales, "", string(preset))
	if v, ok := d.cache.Get(key); ok {
		if d.metrics != nil {
			d.metrics.RecordCacheHit(resourceSales)
		}
		return v.([]models.Sale), nil
	}
	if d.metrics != nil {
		d.metrics.RecordCacheMiss(resourceSales)
	}

	from, to := preset.Range(d.now())
	sales, err := d.sales.ListSales(ctx, storage.SaleFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}

	d.cache.Set(key, sales)
	return sales, nil
}

func (d *Dashboard) recordResourceError(data *Data, resource string, err error) {
	if err == nil {
		return
	}
	data.Errors[resource] = err.Error()
	d.logger.Warn("dashboard resource fetch failed",
		zap.String("resource", resource),
		zap.Error(err),
	)
	if d.metrics != nil {
		d.metrics.RecordResourceError(resource)
	}
}
