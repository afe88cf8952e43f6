package selection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/market"
	"github.com/zhouql/stockpick/internal/scoring"
	"github.com/zhouql/stockpick/internal/strategy"
	"github.com/zhouql/stockpick/pkg/logger"
)

// Coordinator is the slice of the fetch layer the selector needs.
type Coordinator interface {
	EnsureStockList(ctx context.Context, analysisDate time.Time) ([]cache.StockInfo, error)
	EnsureCalendar(ctx context.Context, now time.Time) (*cache.CalendarView, error)
	EnsureFundamentals(ctx context.Context, symbols []string, analysisDate time.Time) (map[string]*cache.Fundamental, error)
	EnsureFinancial(ctx context.Context, symbol string) (*cache.Financial, error)
	EnsureKlines(ctx context.Context, symbol string, analysisDate time.Time) ([]cache.Kline, error)
	EnsureIndexWeights(ctx context.Context, indexCode string, analysisDate time.Time) ([]cache.IndexWeight, error)
}

// Summary describes one selection run end to end, for logging, the
// CLI table, and the report API.
type Summary struct {
	AnalysisDate time.Time              `json:"analysis_date"`
	Universe     int                    `json:"universe"`
	Filtered     map[string]int         `json:"filtered"`
	Candidates   int                    `json:"candidates"`
	Scored       int                    `json:"scored"`
	Dropped      int                    `json:"dropped"`
	Partial      bool                   `json:"partial"`
	Weights      scoring.Weights        `json:"weights"`
	Picks        []cache.Recommendation `json:"picks"`
	Elapsed      time.Duration          `json:"elapsed"`
}

// Selector runs the whole pipeline: universe, filters, data gathering
// through the fetch coordinator, scoring, ranking, persistence.
type Selector struct {
	coord  Coordinator
	repo   *Repository
	strat  *strategy.Strategy
	logger *logger.Logger
	now    func() time.Time
}

// New builds a selector.
func New(coord Coordinator, repo *Repository, strat *strategy.Strategy, log *logger.Logger) *Selector {
	return &Selector{
		coord:  coord,
		repo:   repo,
		strat:  strat,
		logger: log.WithField("module", "selection"),
		now:    time.Now,
	}
}

// gathered is the per-symbol fetch outcome handed to the scorer.
type gathered struct {
	input scoring.Input
	err   error
}

// Run executes one selection. A canceled context stops data gathering
// and ranks whatever was gathered, flagged as partial. Individual
// symbol failures drop the symbol and never abort the run.
func (s *Selector) Run(ctx context.Context) (*Summary, error) {
	started := s.now()

	calView, err := s.coord.EnsureCalendar(ctx, started)
	if err != nil {
		return nil, fmt.Errorf("trade calendar: %w", err)
	}
	analysisDate := market.AnalysisDate(started, calView)

	universe, err := s.coord.EnsureStockList(ctx, analysisDate)
	if err != nil {
		return nil, fmt.Errorf("stock universe: %w", err)
	}

	var members map[string]bool
	if s.strat.IndexCode != "" {
		weights, err := s.coord.EnsureIndexWeights(ctx, s.strat.IndexCode, analysisDate)
		if err != nil {
			return nil, fmt.Errorf("index weights %s: %w", s.strat.IndexCode, err)
		}
		members = make(map[string]bool, len(weights))
		for _, w := range weights {
			members[w.Constituent] = true
		}
	}

	candidates, filtered := filterUniverse(universe, s.strat.Universe, members, analysisDate)
	s.logger.WithFields(map[string]interface{}{
		"analysis_date": analysisDate.Format("2006-01-02"),
		"universe":      len(universe),
		"candidates":    len(candidates),
	}).Info("Universe filtered")

	symbols := make([]string, 0, len(candidates))
	for _, si := range candidates {
		symbols = append(symbols, si.Symbol)
	}
	fundamentals, err := s.coord.EnsureFundamentals(ctx, symbols, analysisDate)
	if err != nil {
		return nil, fmt.Errorf("fundamentals: %w", err)
	}

	inputs, dropped, partial := s.gather(ctx, candidates, fundamentals, analysisDate)

	results, effective := scoring.ScoreBatch(inputs, s.strat.Weights)

	// Stable rank: score descending, symbol ascending on ties so a
	// rerun over identical data produces the identical list.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total > results[j].Total
		}
		return results[i].Symbol < results[j].Symbol
	})

	topN := s.strat.TopN
	if topN > len(results) {
		topN = len(results)
	}

	picks := make([]cache.Recommendation, 0, topN)
	for i := 0; i < topN; i++ {
		r := results[i]
		picks = append(picks, cache.Recommendation{
			RunDate:          analysisDate,
			Symbol:           r.Symbol,
			Name:             r.Name,
			Rank:             i + 1,
			TotalScore:       r.Total,
			FundamentalScore: r.Fundamental.Score,
			VolumeScore:      r.Volume.Score,
			PriceScore:       r.Price.Score,
		})
	}

	// A partial run is not snapshotted; a cron retry or manual rerun
	// should not be fooled by a half-ranked day.
	if !partial {
		if err := s.repo.SaveSnapshot(ctx, analysisDate, picks); err != nil {
			s.logger.WithError(err).Warn("Recommendation snapshot write lost")
		}
	}

	summary := &Summary{
		AnalysisDate: analysisDate,
		Universe:     len(universe),
		Filtered:     filtered,
		Candidates:   len(candidates),
		Scored:       len(results),
		Dropped:      dropped,
		Partial:      partial,
		Weights:      effective,
		Picks:        picks,
		Elapsed:      s.now().Sub(started),
	}

	s.logger.WithFields(map[string]interface{}{
		"scored":  summary.Scored,
		"dropped": summary.Dropped,
		"picks":   len(summary.Picks),
		"partial": summary.Partial,
		"elapsed": summary.Elapsed.String(),
	}).Info("Selection run completed")

	return summary, nil
}

// gather fetches per-symbol data through a worker pool. Fetching is
// the slow, vendor-bound part; scoring afterwards is pure CPU and
// stays sequential.
func (s *Selector) gather(ctx context.Context, candidates []cache.StockInfo, fundamentals map[string]*cache.Fundamental, analysisDate time.Time) ([]scoring.Input, int, bool) {
	jobs := make(chan cache.StockInfo)
	out := make(chan gathered, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < s.strat.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for si := range jobs {
				out <- s.gatherOne(ctx, si, fundamentals[si.Symbol], analysisDate)
			}
		}()
	}

	partial := false
dispatch:
	for _, si := range candidates {
		select {
		case <-ctx.Done():
			partial = true
			break dispatch
		case jobs <- si:
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	inputs := make([]scoring.Input, 0, len(candidates))
	dropped := 0
	for g := range out {
		if g.err != nil {
			dropped++
			s.logger.WithError(g.err).WithField("symbol", g.input.Symbol).
				Warn("Symbol dropped from run")
			continue
		}
		inputs = append(inputs, g.input)
	}
	return inputs, dropped, partial
}

func (s *Selector) gatherOne(ctx context.Context, si cache.StockInfo, fund *cache.Fundamental, analysisDate time.Time) gathered {
	g := gathered{input: scoring.Input{
		Symbol:      si.Symbol,
		Name:        si.Name,
		Fundamental: fund,
	}}

	klines, err := s.coord.EnsureKlines(ctx, si.Symbol, analysisDate)
	if err != nil {
		g.err = err
		return g
	}
	g.input.Klines = klines

	fin, err := s.coord.EnsureFinancial(ctx, si.Symbol)
	if err != nil {
		// Financials are not disqualifying; the dimension scores
		// neutral without them.
		s.logger.WithError(err).WithField("symbol", si.Symbol).Debug("No financials for symbol")
	} else {
		g.input.Financial = fin
	}
	return g
}
