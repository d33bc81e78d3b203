package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trafficpulse/ads-tracker/internal/meta"
)

type fakeAdsAPI struct {
	adSets    []meta.AdSet
	adSetsErr error

	campaignBudgets map[string]int64
	adSetBudgets    map[string]int64
	statuses        map[string]bool

	failAdSets map[string]bool
	statusErr  error
}

func newFakeAdsAPI() *fakeAdsAPI {
	return &fakeAdsAPI{
		campaignBudgets: map[string]int64{},
		adSetBudgets:    map[string]int64{},
		statuses:        map[string]bool{},
		failAdSets:      map[string]bool{},
	}
}

func (f *fakeAdsAPI) ListAdSets(_ context.Context, _ string) ([]meta.AdSet, error) {
	return f.adSets, f.adSetsErr
}

func (f *fakeAdsAPI) UpdateCampaignBudget(_ context.Context, campaignID string, budget int64) error {
	f.campaignBudgets[campaignID] = budget
	return nil
}

func (f *fakeAdsAPI) UpdateAdSetBudget(_ context.Context, adSetID string, budget int64) error {
	if f.failAdSets[adSetID] {
		return errors.New("adset rejected")
	}
	f.adSetBudgets[adSetID] = budget
	return nil
}

func (f *fakeAdsAPI) UpdateStatus(_ context.Context, campaignID string, active bool) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses[campaignID] = active
	return nil
}

func newTestMutator(api *fakeAdsAPI) *Mutator {
	return NewMutator(api, zap.NewNop(), nil)
}

func TestUpdateBudgetCBO(t *testing.T) {
	api := newFakeAdsAPI()
	m := newTestMutator(api)

	err := m.UpdateBudget(context.Background(), "c1", 10000, BudgetModeCBO)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), api.campaignBudgets["c1"])
	assert.Empty(t, api.adSetBudgets)
}

func TestUpdateBudgetABOEvenSplit(t *testing.T) {
	api := newFakeAdsAPI()
	api.adSets = []meta.AdSet{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	m := newTestMutator(api)

	err := m.UpdateBudget(context.Background(), "c1", 9000, BudgetModeABO)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), api.adSetBudgets["a1"])
	assert.Equal(t, int64(3000), api.adSetBudgets["a2"])
	assert.Equal(t, int64(3000), api.adSetBudgets["a3"])
	assert.Empty(t, api.campaignBudgets)
}

func TestUpdateBudgetABORemainderGoesToFirst(t *testing.T) {
	api := newFakeAdsAPI()
	api.adSets = []meta.AdSet{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	m := newTestMutator(api)

	err := m.UpdateBudget(context.Background(), "c1", 10000, BudgetModeABO)
	require.NoError(t, err)
	assert.Equal(t, int64(3334), api.adSetBudgets["a1"])
	assert.Equal(t, int64(3333), api.adSetBudgets["a2"])
	assert.Equal(t, int64(3333), api.adSetBudgets["a3"])

	var total int64
	for _, v := range api.adSetBudgets {
		total += v
	}
	assert.Equal(t, int64(10000), total)
}

func TestUpdateBudgetABOPartialFailure(t *testing.T) {
	api := newFakeAdsAPI()
	api.adSets = []meta.AdSet{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	api.failAdSets["a2"] = true
	m := newTestMutator(api)

	err := m.UpdateBudget(context.Background(), "c1", 9000, BudgetModeABO)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	assert.Contains(t, err.Error(), "a2")

	// The other ad sets were still updated.
	assert.Equal(t, int64(3000), api.adSetBudgets["a1"])
	assert.Equal(t, int64(3000), api.adSetBudgets["a3"])
}

func TestUpdateBudgetABONoAdSets(t *testing.T) {
	api := newFakeAdsAPI()
	m := newTestMutator(api)

	err := m.UpdateBudget(context.Background(), "c1", 9000, BudgetModeABO)
	assert.Error(t, err)
}

func TestUpdateBudgetRejectsNonPositive(t *testing.T) {
	m := newTestMutator(newFakeAdsAPI())

	assert.Error(t, m.UpdateBudget(context.Background(), "c1", 0, BudgetModeCBO))
	assert.Error(t, m.UpdateBudget(context.Background(), "c1", -100, BudgetModeCBO))
}

func TestSetActive(t *testing.T) {
	api := newFakeAdsAPI()
	m := newTestMutator(api)

	require.NoError(t, m.SetActive(context.Background(), "c1", true))
	assert.True(t, api.statuses["c1"])

	require.NoError(t, m.SetActive(context.Background(), "c1", false))
	assert.False(t, api.statuses["c1"])

	api.statusErr = errors.New("graph down")
	assert.Error(t, m.SetActive(context.Background(), "c1", true))
}

func TestParseBudgetMode(t *testing.T) {
	got, err := ParseBudgetMode("")
	require.NoError(t, err)
	assert.Equal(t, BudgetModeCBO, got)

	got, err = ParseBudgetMode("ABO")
	require.NoError(t, err)
	assert.Equal(t, BudgetModeABO, got)

	_, err = ParseBudgetMode("shared")
	assert.Error(t, err)
}
