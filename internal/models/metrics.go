package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a float64 that survives JSON encoding when the underlying value
// is not finite. ROAS is positive infinity for campaigns with attributed
// commission and zero spend; encoding/json rejects IEEE infinities, so Ratio
// serializes them as the string "Infinity" instead.
type Ratio float64

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	if math.IsInf(f, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(f, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(f) {
		return []byte(`"NaN"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "Infinity":
			*r = Ratio(math.Inf(1))
		case "-Infinity":
			*r = Ratio(math.Inf(-1))
		case "NaN":
			*r = Ratio(math.NaN())
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// IsInf reports whether the ratio is positive infinity.
func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

// CampaignMetrics is the derived, never-persisted join of one campaign with
// its attributed sales. Orphan entries are synthesized for campaign IDs that
// appear on sales but not in the fetched campaign set, so no revenue is
// dropped from totals.
type CampaignMetrics struct {
	CampaignID   string         `json:"campaign_id"`
	CampaignName string         `json:"campaign_name"`
	AccountID    string         `json:"account_id,omitempty"`
	Status       CampaignStatus `json:"status,omitempty"`
	Orphan       bool           `json:"orphan,omitempty"`

	DailyBudget int64   `json:"daily_budget"`
	Spend       float64 `json:"spend"`
	CPM         float64 `json:"cpm"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Checkouts   int64   `json:"checkouts"`

	PrimarySales   int `json:"primary_sales"`
	UpsellSales    int `json:"upsell_sales"`
	OrderBumpSales int `json:"order_bump_sales"`

	PrimaryRevenue   float64 `json:"primary_revenue"`
	UpsellRevenue    float64 `json:"upsell_revenue"`
	OrderBumpRevenue float64 `json:"order_bump_revenue"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCommission  float64 `json:"total_commission"`

	CPA             float64 `json:"cpa"`
	TicketBase      float64 `json:"ticket_base"`
	Ticket          float64 `json:"ticket"`
	UpsellUpliftPct float64 `json:"upsell_uplift_pct"`
	ROAS            Ratio   `json:"roas"`
	Profit          float64 `json:"profit"`
}

// AggregateTotals sums the per-campaign metrics into one portfolio row.
// CPA and CPM are unweighted arithmetic means over campaigns; ROAS and the
// ticket values are blended from the underlying sums instead.
type AggregateTotals struct {
	Campaigns      int `json:"campaigns"`
	OrphanGroups   int `json:"orphan_groups"`
	PrimarySales   int `json:"primary_sales"`
	UpsellSales    int `json:"upsell_sales"`
	OrderBumpSales int `json:"order_bump_sales"`

	DailyBudget     int64   `json:"daily_budget"`
	Spend           float64 `json:"spend"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalCommission float64 `json:"total_commission"`
	Profit          float64 `json:"profit"`

	AvgCPA     float64 `json:"avg_cpa"`
	AvgCPM     float64 `json:"avg_cpm"`
	ROAS       Ratio   `json:"roas"`
	TicketBase float64 `json:"ticket_base"`
	Ticket     float64 `json:"ticket"`
}

// PlatformMetrics aggregates sales only (no campaign data) by the platform
// that processed them.
type PlatformMetrics struct {
	Platform string `json:"platform"`

	PrimarySales   int `json:"primary_sales"`
	UpsellSales    int `json:"upsell_sales"`
	OrderBumpSales int `json:"order_bump_sales"`

	PrimaryRevenue   float64 `json:"primary_revenue"`
	UpsellRevenue    float64 `json:"upsell_revenue"`
	OrderBumpRevenue float64 `json:"order_bump_revenue"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCommission  float64 `json:"total_commission"`

	Ticket float64 `json:"ticket"`

	// Impact percentages express how much the add-on revenue contributed on
	// top of primary revenue.
	UpsellImpactPct    float64 `json:"upsell_impact_pct"`
	OrderBumpImpactPct float64 `json:"order_bump_impact_pct"`
	TotalImpactPct     float64 `json:"total_impact_pct"`
}
