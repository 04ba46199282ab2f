package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
)

func TestEvaluate_HoldingThresholds(t *testing.T) {
	none := map[string]bool{}
	assert.Equal(t, []string{"first_holding"}, Evaluate(HoldingAdded{HoldingsCount: 1}, none))
	assert.Equal(t, []string{"first_holding", "diversified"}, Evaluate(HoldingAdded{HoldingsCount: 5}, none))
	assert.Equal(t, []string{"first_holding", "diversified", "portfolio_pro"}, Evaluate(HoldingAdded{HoldingsCount: 12}, none))
	assert.Empty(t, Evaluate(HoldingAdded{HoldingsCount: 0}, none))
}

func TestEvaluate_SkipsAlreadyUnlocked(t *testing.T) {
	unlocked := map[string]bool{"first_holding": true, "diversified": true}
	assert.Empty(t, Evaluate(HoldingAdded{HoldingsCount: 6}, unlocked))
	assert.Equal(t, []string{"portfolio_pro"}, Evaluate(HoldingAdded{HoldingsCount: 10}, unlocked))
}

func TestEvaluate_EachVariantOnlyMatchesItsRules(t *testing.T) {
	none := map[string]bool{}
	cases := []struct {
		action Action
		want   []string
	}{
		{PortfolioScored{Score: 84}, nil},
		{PortfolioScored{Score: 85}, []string{"high_score"}},
		{BrokerageSynced{}, []string{"broker_connected"}},
		{NoteSaved{NotesCount: 1}, []string{"note_taker"}},
		{WatchlistUpdated{Tickers: 4}, nil},
		{WatchlistUpdated{Tickers: 5}, []string{"watcher"}},
		{GoalSet{Target: 0, NetWorth: 10}, nil},
		{GoalSet{Target: 5000, NetWorth: 10}, []string{"goal_setter"}},
		{GoalSet{Target: 5000, NetWorth: 6000}, []string{"goal_setter", "goal_reached"}},
		{NetWorthChanged{NetWorth: 99999.99}, nil},
		{NetWorthChanged{NetWorth: 100000}, []string{"six_figures"}},
		{NetWorthChanged{NetWorth: 10, Target: 5}, []string{"goal_reached"}},
		{NewsDismissed{Count: 9}, nil},
		{NewsDismissed{Count: 10}, []string{"news_curator"}},
	}
	for _, c := range cases {
		got := Evaluate(c.action, none)
		if c.want == nil {
			assert.Empty(t, got, "%#v", c.action)
		} else {
			assert.Equal(t, c.want, got, "%#v", c.action)
		}
	}
}

func TestEvaluate_NilAction(t *testing.T) {
	assert.Empty(t, Evaluate(nil, nil))
}

func TestEvaluate_ResubmittingAfterUnlockIsIdempotent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	achievements := Catalog()

	achievements, first := ApplyActions(achievements, at, PortfolioScored{Score: 90})
	require.Equal(t, []string{"high_score"}, first)

	later := at.Add(time.Hour)
	achievements, second := ApplyActions(achievements, later, PortfolioScored{Score: 95})
	assert.Empty(t, second)

	for _, a := range achievements {
		if a.ID == "high_score" {
			require.NotNil(t, a.UnlockedAt)
			assert.True(t, a.UnlockedAt.Equal(at))
		}
	}
}

func TestUnlockAchievements_NeverResetsTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	achievements := UnlockAchievements(Catalog(), []string{"note_taker"}, at)
	achievements = UnlockAchievements(achievements, []string{"note_taker"}, at.AddDate(1, 0, 0))

	unlocked := UnlockedSet(achievements)
	assert.Equal(t, map[string]bool{"note_taker": true}, unlocked)
	for _, a := range achievements {
		if a.ID == "note_taker" {
			assert.True(t, a.UnlockedAt.Equal(at))
		}
	}
}

func TestUnlockAchievements_AddsMissingCatalogEntries(t *testing.T) {
	stored := []models.Achievement{{ID: "first_holding", Title: "First Steps", Unlocked: true}}
	out := UnlockAchievements(stored, nil, time.Now())
	assert.Len(t, out, len(Catalog()))
	assert.True(t, out[0].Unlocked)
	assert.Len(t, stored, 1, "input is not modified")
}

func TestUnlockAchievements_IgnoresUnknownIDs(t *testing.T) {
	out := UnlockAchievements(Catalog(), []string{"does_not_exist"}, time.Now())
	assert.Empty(t, UnlockedSet(out))
}

func TestCatalogStartsLocked(t *testing.T) {
	for _, a := range Catalog() {
		assert.False(t, a.Unlocked, a.ID)
		assert.Nil(t, a.UnlockedAt, a.ID)
	}
}
