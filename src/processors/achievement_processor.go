package processors

import (
	"time"

	"github.com/username/finboard/src/models"
)

// Action is something the user did that may unlock achievements. The set of
// variants is closed: only types in this package implement it.
type Action interface {
	isAction()
}

// HoldingAdded follows a trade; HoldingsCount is the number of open positions.
type HoldingAdded struct{ HoldingsCount int }

// PortfolioScored follows an AI scoring run.
type PortfolioScored struct{ Score int }

// BrokerageSynced follows a brokerage import.
type BrokerageSynced struct{}

// NoteSaved follows saving a ticker note.
type NoteSaved struct{ NotesCount int }

// WatchlistUpdated carries the number of distinct watched tickers.
type WatchlistUpdated struct{ Tickers int }

// GoalSet follows setting a net worth target.
type GoalSet struct {
	Target   float64
	NetWorth float64
}

// NetWorthChanged follows any recomputation that moved net worth.
type NetWorthChanged struct {
	NetWorth float64
	Target   float64
}

// NewsDismissed carries the total number of dismissed news items.
type NewsDismissed struct{ Count int }

func (HoldingAdded) isAction()     {}
func (PortfolioScored) isAction()  {}
func (BrokerageSynced) isAction()  {}
func (NoteSaved) isAction()        {}
func (WatchlistUpdated) isAction() {}
func (GoalSet) isAction()          {}
func (NetWorthChanged) isAction()  {}
func (NewsDismissed) isAction()    {}

// SixFiguresThreshold is the net worth that unlocks six_figures.
const SixFiguresThreshold = 100000

type rule struct {
	id          string
	title       string
	description string
	qualifies   func(Action) bool
}

var catalog = []rule{
	{"first_holding", "First Steps", "Add your first holding.", func(a Action) bool {
		v, ok := a.(HoldingAdded)
		return ok && v.HoldingsCount >= 1
	}},
	{"diversified", "Diversified", "Hold five different positions.", func(a Action) bool {
		v, ok := a.(HoldingAdded)
		return ok && v.HoldingsCount >= 5
	}},
	{"portfolio_pro", "Portfolio Pro", "Hold ten different positions.", func(a Action) bool {
		v, ok := a.(HoldingAdded)
		return ok && v.HoldingsCount >= 10
	}},
	{"high_score", "High Scorer", "Reach a portfolio score of 85 or more.", func(a Action) bool {
		v, ok := a.(PortfolioScored)
		return ok && v.Score >= 85
	}},
	{"broker_connected", "Connected", "Sync a brokerage account.", func(a Action) bool {
		_, ok := a.(BrokerageSynced)
		return ok
	}},
	{"note_taker", "Note Taker", "Save a note on a ticker.", func(a Action) bool {
		v, ok := a.(NoteSaved)
		return ok && v.NotesCount >= 1
	}},
	{"watcher", "Market Watcher", "Watch five tickers.", func(a Action) bool {
		v, ok := a.(WatchlistUpdated)
		return ok && v.Tickers >= 5
	}},
	{"goal_setter", "Goal Setter", "Set a net worth goal.", func(a Action) bool {
		v, ok := a.(GoalSet)
		return ok && v.Target > 0
	}},
	{"goal_reached", "Goal Reached", "Reach your net worth goal.", func(a Action) bool {
		switch v := a.(type) {
		case GoalSet:
			return v.Target > 0 && v.NetWorth >= v.Target
		case NetWorthChanged:
			return v.Target > 0 && v.NetWorth >= v.Target
		}
		return false
	}},
	{"six_figures", "Six Figures", "Reach a net worth of 100,000.", func(a Action) bool {
		v, ok := a.(NetWorthChanged)
		return ok && v.NetWorth >= SixFiguresThreshold
	}},
	{"news_curator", "News Curator", "Dismiss ten news items.", func(a Action) bool {
		v, ok := a.(NewsDismissed)
		return ok && v.Count >= 10
	}},
}

// Evaluate returns the ids newly qualified by action, in catalog order.
// Ids already in unlocked are never returned.
func Evaluate(action Action, unlocked map[string]bool) []string {
	var ids []string
	if action == nil {
		return ids
	}
	for _, r := range catalog {
		if unlocked[r.id] {
			continue
		}
		if r.qualifies(action) {
			ids = append(ids, r.id)
		}
	}
	return ids
}

// Catalog returns every achievement, locked.
func Catalog() []models.Achievement {
	out := make([]models.Achievement, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, models.Achievement{ID: r.id, Title: r.title, Description: r.description})
	}
	return out
}

// UnlockedSet returns the ids already unlocked.
func UnlockedSet(achievements []models.Achievement) map[string]bool {
	set := make(map[string]bool)
	for _, a := range achievements {
		if a.Unlocked {
			set[a.ID] = true
		}
	}
	return set
}

// UnlockAchievements returns a copy of achievements with ids unlocked at
// time at. Catalog entries missing from achievements are added first, so a
// dashboard saved before an entry existed still gains it. UnlockedAt is
// never overwritten.
func UnlockAchievements(achievements []models.Achievement, ids []string, at time.Time) []models.Achievement {
	out := make([]models.Achievement, len(achievements))
	copy(out, achievements)

	index := make(map[string]int, len(out))
	for i, a := range out {
		index[a.ID] = i
	}
	for _, c := range Catalog() {
		if _, ok := index[c.ID]; !ok {
			index[c.ID] = len(out)
			out = append(out, c)
		}
	}

	for _, id := range ids {
		i, ok := index[id]
		if !ok || out[i].Unlocked {
			continue
		}
		ts := at
		out[i].Unlocked = true
		out[i].UnlockedAt = &ts
	}
	return out
}

// ApplyActions evaluates each action in turn against achievements and
// returns the updated slice along with every id unlocked.
func ApplyActions(achievements []models.Achievement, at time.Time, actions ...Action) ([]models.Achievement, []string) {
	var unlockedNow []string
	for _, action := range actions {
		ids := Evaluate(action, UnlockedSet(achievements))
		if len(ids) == 0 {
			continue
		}
		achievements = UnlockAchievements(achievements, ids, at)
		unlockedNow = append(unlockedNow, ids...)
	}
	return achievements, unlockedNow
}
