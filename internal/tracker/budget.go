package tracker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/meta"
	"github.com/trafficpulse/ads-tracker/internal/metrics"
)

// BudgetMode says where a campaign's daily budget lives.
type BudgetMode string

const (
	// BudgetModeCBO sets the budget on the campaign itself.
	BudgetModeCBO BudgetMode = "cbo"
	// BudgetModeABO splits the budget evenly across the campaign's ad sets.
	BudgetModeABO BudgetMode = "abo"
)

// ParseBudgetMode maps the request value to a mode; empty means CBO.
func ParseBudgetMode(s string) (BudgetMode, error) {
	switch BudgetMode(strings.ToLower(s)) {
	case "", BudgetModeCBO:
		return BudgetModeCBO, nil
	case BudgetModeABO:
		return BudgetModeABO, nil
	default:
		return "", fmt.Errorf("unknown budget mode %q", s)
	}
}

// AdsMutator is the Graph API surface the mutation service needs.
type AdsMutator interface {
	ListAdSets(ctx context.Context, campaignID string) ([]meta.AdSet, error)
	UpdateCampaignBudget(ctx context.Context, campaignID string, budgetMinor int64) error
	UpdateAdSetBudget(ctx context.Context, adSetID string, budgetMinor int64) error
	UpdateStatus(ctx context.Context, campaignID string, active bool) error
}

// Mutator applies budget and status changes to live campaigns.
type Mutator struct {
	api     AdsMutator
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMutator constructs the mutation service.
func NewMutator(api AdsMutator, logger *zap.Logger, m *metrics.Metrics) *Mutator {
	return &Mutator{api: api, logger: logger, metrics: m}
}

// UpdateBudget sets a campaign's daily budget in minor currency units.
//
// In CBO mode the budget goes on the campaign. In ABO mode it is divided
// evenly across the campaign's ad sets, with the integer remainder going to
// the first ad set so the parts always sum to the requested amount. Ad set
// updates that fail do not stop the remaining ones; failures are collected
// into one error naming each failed ad set.
func (m *Mutator) UpdateBudget(ctx context.Context, campaignID string, budgetMinor int64, mode BudgetMode) error {
	if budgetMinor <= 0 {
		return fmt.Errorf("daily budget must be positive, got %d", budgetMinor)
	}

	err := m.applyBudget(ctx, campaignID, budgetMinor, mode)

	if m.metrics != nil {
		m.metrics.RecordBudgetUpdate(string(mode), err == nil)
	}
	if err != nil {
		m.logger.Error("budget update failed",
			zap.String("campaign_id", campaignID),
			zap.String("mode", string(mode)),
			zap.Int64("daily_budget", budgetMinor),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("budget updated",
		zap.String("campaign_id", campaignID),
		zap.String("mode", string(mode)),
		zap.Int64("daily_budget", budgetMinor),
	)
	return nil
}

func (m *Mutator) applyBudget(ctx context.Context, campaignID string, budgetMinor int64, mode BudgetMode) error {
	if mode == BudgetModeCBO {
		return m.api.UpdateCampaignBudget(ctx, campaignID, budgetMinor)
	}

	adSets, err := m.api.ListAdSets(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to list ad sets for campaign %s: %w", campaignID, err)
	}
	if len(adSets) == 0 {
		return fmt.Errorf("campaign %s has no ad sets to distribute the budget over", campaignID)
	}

	n := int64(len(adSets))
	share := budgetMinor / n
	remainder := budgetMinor % n

	var failed []string
	for i, as := range adSets {
		amount := share
		if i == 0 {
			amount += remainder
		}
		if err := m.api.UpdateAdSetBudget(ctx, as.ID, amount); err != nil {
			m.logger.Warn("ad set budget update failed",
				zap.String("ad_set_id", as.ID),
				zap.Int64("amount", amount),
				zap.Error(err),
			)
			failed = append(failed, as.ID)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("budget update failed for %d of %d ad sets: %s",
			len(failed), len(adSets), strings.Join(failed, ", "))
	}
	return nil
}

// SetActive pauses or resumes a campaign.
func (m *Mutator) SetActive(ctx context.Context, campaignID string, active bool) error {
	err := m.api.UpdateStatus(ctx, campaignID, active)

	if m.metrics != nil {
		m.metrics.RecordStatusUpdate(err == nil)
	}
	if err != nil {
		m.logger.Error("status update failed",
			zap.String("campaign_id", campaignID),
			zap.Bool("active", active),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update status of campaign %s: %w", campaignID, err)
	}

	m.logger.Info("campaign status updated",
		zap.String("campaign_id", campaignID),
		zap.Bool("active", active),
	)
	return nil
}
