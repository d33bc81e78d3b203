package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trafficpulse/ads-tracker/internal/config"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
	"github.com/trafficpulse/ads-tracker/internal/models"
	"go.uber.org/zap"
)

// campaignFields is the field expansion requested for every campaign fetch.
// The insights expansion carries the date preset of the reporting window.
const campaignFields = "id,name,status,daily_budget,insights.date_preset(%s){spend,cpm,impressions,clicks,cost_per_action_type,actions}"

// Client talks to the Facebook Graph API. All calls are bounded by the
// configured request timeout; responses other than 2xx surface the Graph
// error message and are never retried.
type Client struct {
	cfg     config.MetaConfig
	http    *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient constructs a Graph API client.
func NewClient(cfg config.MetaConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
		metrics: m,
	}
}

// Wire types. The Graph API encodes every numeric field as a string.

type campaignsPage struct {
	Data   []campaignEntry `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type campaignEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	DailyBudget string `json:"daily_budget"`
	Insights    struct {
		Data []insightsEntry `json:"data"`
	} `json:"insights"`
}

type insightsEntry struct {
	Spend             string        `json:"spend"`
	CPM               string        `json:"cpm"`
	Impressions       string        `json:"impressions"`
	Clicks            string        `json:"clicks"`
	CostPerActionType []actionValue `json:"cost_per_action_type"`
	Actions           []actionValue `json:"actions"`
}

type actionValue struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

type adSetsPage struct {
	Data   []adSetEntry `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type adSetEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	DailyBudget string `json:"daily_budget"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// AdSet is an ad set under a campaign, carrying its own budget when the
// campaign runs ad-set-level budgets (ABO).
type AdSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	DailyBudget int64  `json:"daily_budget"`
}

// ListCampaigns fetches all campaigns of an ad account together with their
// insights for the given date preset, following pagination.
func (c *Client) ListCampaigns(ctx context.Context, accountID string, preset models.DatePreset) ([]*models.Campaign, error) {
	q := url.Values{}
	q.Set("fields", fmt.Sprintf(campaignFields, preset))
	q.Set("limit", "100")
	q.Set("access_token", c.cfg.AccessToken)

	next := fmt.Sprintf("%s/%s/act_%s/campaigns?%s", c.cfg.BaseURL, c.cfg.APIVersion, accountID, q.Encode())

	var campaigns []*models.Campaign
	for next != "" {
		var page campaignsPage
		if err := c.get(ctx, "campaigns", next, &page); err != nil {
			return nil, err
		}
		for _, e := range page.Data {
			campaigns = append(campaigns, c.toCampaign(accountID, e))
		}
		next = page.Paging.Next
	}

	return campaigns, nil
}

// ListAdSets fetches the ad sets under a campaign, following pagination.
func (c *Client) ListAdSets(ctx context.Context, campaignID string) ([]AdSet, error) {
	q := url.Values{}
	q.Set("fields", "id,name,status,daily_budget")
	q.Set("limit", "100")
	q.Set("access_token", c.cfg.AccessToken)

	next := fmt.Sprintf("%s/%s/%s/adsets?%s", c.cfg.BaseURL, c.cfg.APIVersion, campaignID, q.Encode())

	var adSets []AdSet
	for next != "" {
		var page adSetsPage
		if err := c.get(ctx, "adsets", next, &page); err != nil {
			return nil, err
		}
		for _, e := range page.Data {
			adSets = append(adSets, AdSet{
				ID:          e.ID,
				Name:        e.Name,
				Status:      e.Status,
				DailyBudget: c.parseCount("daily_budget", e.ID, e.DailyBudget),
			})
		}
		next = page.Paging.Next
	}

	return adSets, nil
}

// UpdateCampaignBudget sets a campaign-level daily budget in minor units.
func (c *Client) UpdateCampaignBudget(ctx context.Context, campaignID string, budgetMinor int64) error {
	return c.post(ctx, "campaign_budget", campaignID, url.Values{
		"daily_budget": {strconv.FormatInt(budgetMinor, 10)},
	})
}

// UpdateAdSetBudget sets an ad-set-level daily budget in minor units.
func (c *Client) UpdateAdSetBudget(ctx context.Context, adSetID string, budgetMinor int64) error {
	return c.post(ctx, "adset_budget", adSetID, url.Values{
		"daily_budget": {strconv.FormatInt(budgetMinor, 10)},
	})
}

// UpdateStatus pauses or resumes a campaign. The Graph API only exposes the
// binary ACTIVE/PAUSED transition for this.
func (c *Client) UpdateStatus(ctx context.Context, campaignID string, active bool) error {
	status := string(models.CampaignStatusPaused)
	if active {
		status = string(models.CampaignStatusActive)
	}
	return c.post(ctx, "campaign_status", campaignID, url.Values{
		"status": {status},
	})
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build graph request: %w", err)
	}

	body, err := c.do(endpoint, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, objectID string, form url.Values) error {
	form.Set("access_token", c.cfg.AccessToken)

	target := fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, c.cfg.APIVersion, objectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err = c.do(endpoint, req)
	return err
}

func (c *Client) do(endpoint string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordGraphRequest(endpoint, "error", time.Since(start))
		}
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}

	if c.metrics != nil {
		c.metrics.RecordGraphRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge graphError
		if json.Unmarshal(body, &ge) == nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("graph api error: %s (type %s, code %d)",
				ge.Error.Message, ge.Error.Type, ge.Error.Code)
		}
		return nil, fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	return body, nil
}

func (c *Client) toCampaign(accountID string, e campaignEntry) *models.Campaign {
	campaign := &models.Campaign{
		ID:          e.ID,
		Name:        e.Name,
		Status:      models.CampaignStatus(e.Status),
		AccountID:   accountID,
		DailyBudget: c.parseCount("daily_budget", e.ID, e.DailyBudget),
	}

	if len(e.Insights.Data) == 0 {
		return campaign
	}
	in := e.Insights.Data[0]

	ins := models.Insights{
		Spend:       c.parseMoney("spend", e.ID, in.Spend),
		CPM:         c.parseMoney("cpm", e.ID, in.CPM),
		Impressions: c.parseCount("impressions", e.ID, in.Impressions),
		Clicks:      c.parseCount("clicks", e.ID, in.Clicks),
	}

	if len(in.CostPerActionType) > 0 {
		ins.CostPerAction = make(map[string]float64, len(in.CostPerActionType))
		for _, a := range in.CostPerActionType {
			ins.CostPerAction[a.ActionType] = c.parseMoney("cost_per_action", e.ID, a.Value)
		}
	}
	if len(in.Actions) > 0 {
		ins.ActionCounts = make(map[string]int64, len(in.Actions))
		for _, a := range in.Actions {
			ins.ActionCounts[a.ActionType] = c.parseCount("action", e.ID, a.Value)
		}
	}

	campaign.Insights = ins
	return campaign
}

// parseMoney coerces a string-encoded monetary field. Malformed values are
// logged and treated as zero so one bad row cannot take down the dashboard.
func (c *Client) parseMoney(field, objectID, raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warn("malformed monetary field, coercing to zero",
			zap.String("field", field),
			zap.String("object_id", objectID),
			zap.String("value", raw),
		)
		return 0
	}
	return v
}

func (c *Client) parseCount(field, objectID, raw string) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.logger.Warn("malformed numeric field, coercing to zero",
			zap.String("field", field),
			zap.String("object_id", objectID),
			zap.String("value", raw),
		)
		return 0
	}
	return v
}
