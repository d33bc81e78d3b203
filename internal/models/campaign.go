package models

import (
	"fmt"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusActive   CampaignStatus = "ACTIVE"
	CampaignStatusPaused   CampaignStatus = "PAUSED"
	CampaignStatusArchived CampaignStatus = "ARCHIVED"
	CampaignStatusDeleted  CampaignStatus = "DELETED"
)

// DatePreset identifies a Graph API reporting window.
type DatePreset string

const (
	PresetToday     DatePreset = "today"
	PresetYesterday DatePreset = "yesterday"
	PresetLast7Days DatePreset = "last_7_days"
	PresetThisMonth DatePreset = "this_month"
)

// ParseDatePreset validates a user-supplied period string.
func ParseDatePreset(s string) (DatePreset, error) {
	switch DatePreset(s) {
	case PresetToday, PresetYesterday, PresetLast7Days, PresetThisMonth:
		return DatePreset(s), nil
	case "":
		return PresetToday, nil
	}
	return "", fmt.Errorf("unknown date preset %q", s)
}

// Range converts the preset to a concrete [from, to) interval, used when
// filtering the sales store so both sources cover the same window.
func (p DatePreset) Range(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PresetYesterday:
		return day.AddDate(0, 0, -1), day
	case PresetLast7Days:
		return day.AddDate(0, 0, -7), day.AddDate(0, 0, 1)
	case PresetThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), day.AddDate(0, 0, 1)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

// ActionInitiateCheckout is the Graph action type the dashboard tracks as the
// checkout signal.
const ActionInitiateCheckout = "initiate_checkout"

// Insights carries the spend and delivery statistics of a campaign for one
// reporting window, already parsed out of the Graph API string encoding.
type Insights struct {
	Spend         float64            `json:"spend"`
	CPM           float64            `json:"cpm"`
	Impressions   int64              `json:"impressions"`
	Clicks        int64              `json:"clicks"`
	CostPerAction map[string]float64 `json:"cost_per_action,omitempty"`
	ActionCounts  map[string]int64   `json:"action_counts,omitempty"`
}

// Checkouts returns the initiate_checkout action count.
func (i Insights) Checkouts() int64 {
	return i.ActionCounts[ActionInitiateCheckout]
}

// CostPerCheckout returns the reported cost of an initiate_checkout action.
func (i Insights) CostPerCheckout() float64 {
	return i.CostPerAction[ActionInitiateCheckout]
}

// Campaign is a read-only snapshot of an ad campaign fetched from the Graph
// API together with its insights for the requested window. It is never
// persisted beyond the fetch-layer cache.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      CampaignStatus `json:"status"`
	AccountID   string         `json:"account_id"`
	DailyBudget int64          `json:"daily_budget"` // minor currency units
	Insights    Insights       `json:"insights"`
}

// IsActive reports whether the campaign is currently delivering.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}
