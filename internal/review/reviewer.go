package review

import (
	"context"
	"fmt"
	"time"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/pkg/logger"
)

// PickReturn is the subsequent performance of one past pick.
type PickReturn struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Rank       int      `json:"rank"`
	TotalScore float64  `json:"total_score"`
	EntryClose float64  `json:"entry_close"`
	LastClose  float64  `json:"last_close"`
	ReturnPct  *float64 `json:"return_pct"` // nil when no bars past the run date
}

// Report is the review of one historical run.
type Report struct {
	RunDate   time.Time    `json:"run_date"`
	Picks     []PickReturn `json:"picks"`
	AvgReturn *float64     `json:"avg_return_pct"`
	Winners   int          `json:"winners"`
	Losers    int          `json:"losers"`
}

// Reviewer measures how past recommendation snapshots performed,
// using only the cached kline series.
type Reviewer struct {
	store  *cache.Store
	repo   *selection.Repository
	logger *logger.Logger
}

// New builds a reviewer.
func New(store *cache.Store, repo *selection.Repository, log *logger.Logger) *Reviewer {
	return &Reviewer{
		store:  store,
		repo:   repo,
		logger: log.WithField("module", "review"),
	}
}

// Review computes returns from the run date's close to the latest
// cached close for every pick of that run.
func (r *Reviewer) Review(ctx context.Context, runDate time.Time) (*Report, error) {
	picks, err := r.repo.ByDate(ctx, runDate)
	if err != nil {
		return nil, err
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("no recommendations stored for %s", runDate.Format("2006-01-02"))
	}

	report := &Report{RunDate: runDate}
	var sum float64
	counted := 0

	for _, p := range picks {
		pr := PickReturn{
			Symbol:     p.Symbol,
			Name:       p.Name,
			Rank:       p.Rank,
			TotalScore: p.TotalScore,
		}

		series, err := r.store.GetKlines(ctx, p.Symbol, cache.PeriodDaily)
		if err != nil {
			return nil, err
		}
		entry, last, ok := entryAndLast(series, runDate)
		if ok {
			pr.EntryClose = entry
			pr.LastClose = last
			pct := (last - entry) / entry * 100
			pr.ReturnPct = &pct

			sum += pct
			counted++
			if pct > 0 {
				report.Winners++
			} else if pct < 0 {
				report.Losers++
			}
		} else {
			r.logger.WithField("symbol", p.Symbol).Debug("No bars past the run date yet")
		}

		report.Picks = append(report.Picks, pr)
	}

	if counted > 0 {
		avg := sum / float64(counted)
		report.AvgReturn = &avg
	}
	return report, nil
}

// ReviewLatest reviews the newest stored run.
func (r *Reviewer) ReviewLatest(ctx context.Context) (*Report, error) {
	runDate, _, err := r.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if runDate.IsZero() {
		return nil, fmt.Errorf("no recommendation snapshots stored yet")
	}
	return r.Review(ctx, runDate)
}

// entryAndLast finds the close on (or first after) the run date and
// the newest close strictly after it.
func entryAndLast(series []cache.Kline, runDate time.Time) (entry, last float64, ok bool) {
	entryIdx := -1
	for i, k := range series {
		if !k.Date.Before(runDate) {
			entryIdx = i
			break
		}
	}
	if entryIdx < 0 || entryIdx >= len(series)-1 {
		return 0, 0, false
	}
	entry = series[entryIdx].Close
	last = series[len(series)-1].Close
	if entry <= 0 {
		return 0, 0, false
	}
	return entry, last, true
}
