package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/external/tushare"
	"github.com/zhouql/stockpick/internal/market"
	"github.com/zhouql/stockpick/pkg/logger"
)

// Lookback for a cold kline fetch: calendar days, roughly 80 trading
// bars, comfortably above what the 20-day price metrics need.
const klineLookbackDays = 120

// Index weights older than this are refetched even though a fresher
// observation may not exist yet; rebalancing is monthly at most.
const indexWeightTolerance = 7 * 24 * time.Hour

// Vendor is the slice of the data vendor the coordinator needs.
type Vendor interface {
	StockBasic(ctx context.Context) ([]tushare.StockBasic, error)
	SuspendD(ctx context.Context, tradeDate time.Time) ([]string, error)
	DailyBasic(ctx context.Context, tradeDate time.Time) ([]tushare.DailyBasic, error)
	FinaIndicator(ctx context.Context, symbol string) (*tushare.FinaIndicator, error)
	Daily(ctx context.Context, symbol string, start, end time.Time) ([]tushare.DailyBar, error)
	TradeCal(ctx context.Context, start, end time.Time) ([]tushare.TradeCalDay, error)
	IndexWeight(ctx context.Context, indexCode string, start, end time.Time) ([]tushare.IndexWeightRow, error)
}

// Coordinator decides, per data type and symbol, whether the cache
// answers or the vendor must be called, and how much to ask the
// vendor for. Vendor failures degrade to stale cache; a symbol is
// given up on only when there is no data at all.
type Coordinator struct {
	store  *cache.Store
	vendor Vendor
	logger *logger.Logger
	force  bool

	fundamentalsFetched bool
}

// New builds a coordinator. With force set every freshness check
// reports a miss for this coordinator's lifetime.
func New(store *cache.Store, vendor Vendor, log *logger.Logger, force bool) *Coordinator {
	if force {
		store.ForceInvalidateMirror()
	}
	return &Coordinator{
		store:  store,
		vendor: vendor,
		logger: log.WithField("module", "fetch"),
		force:  force,
	}
}

// EnsureStockList returns the listed universe, refreshing it from the
// vendor when the cached copy is older than a day. Suspension flags
// come from the per-date suspension endpoint; when that call fails
// every symbol is treated as trading and the filter downstream lets
// them through.
func (c *Coordinator) EnsureStockList(ctx context.Context, analysisDate time.Time) ([]cache.StockInfo, error) {
	list, err := c.store.GetStockList(ctx, c.force)
	if err != nil {
		return nil, err
	}
	if list != nil {
		return list, nil
	}

	basics, err := c.vendor.StockBasic(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Stock list fetch failed, falling back to cached copy")
		snapshot, snapErr := c.store.StockListSnapshot(ctx)
		if snapErr != nil {
			return nil, snapErr
		}
		if len(snapshot) == 0 {
			return nil, fmt.Errorf("stock list unavailable: %w", err)
		}
		return snapshot, nil
	}

	halted := make(map[string]bool)
	if codes, err := c.vendor.SuspendD(ctx, analysisDate); err != nil {
		c.logger.WithError(err).Warn("Suspension list fetch failed, treating all symbols as trading")
	} else {
		for _, code := range codes {
			if sym, err := market.NormalizeSymbol(code); err == nil {
				halted[sym] = true
			}
		}
	}

	list = make([]cache.StockInfo, 0, len(basics))
	for _, b := range basics {
		symbol, err := market.NormalizeSymbol(b.Symbol)
		if err != nil {
			continue
		}
		list = append(list, cache.StockInfo{
			Symbol:    symbol,
			Name:      b.Name,
			Market:    market.MarketOf(symbol),
			ListDate:  b.ListDate,
			Suspended: halted[symbol],
		})
	}
	if err := c.store.SaveStockList(ctx, list); err != nil {
		c.logger.WithError(err).Warn("Stock list cache write lost")
	}
	return list, nil
}

// EnsureKlines returns the daily series for a symbol up to the
// analysis date, fetching only the missing tail. Returns nil when
// neither vendor nor cache have anything for the symbol.
func (c *Coordinator) EnsureKlines(ctx context.Context, symbol string, analysisDate time.Time) ([]cache.Kline, error) {
	cached, err := c.store.GetKlines(ctx, symbol, cache.PeriodDaily)
	if err != nil {
		return nil, err
	}

	latest, err := c.store.LatestKlineDate(ctx, symbol, cache.PeriodDaily)
	if err != nil {
		return nil, err
	}

	if !c.force && !latest.IsZero() && !latest.Before(analysisDate) {
		klineFresh, err := c.store.KlineFresh(ctx, symbol, cache.PeriodDaily)
		if err != nil {
			return nil, err
		}
		if klineFresh {
			return cached, nil
		}
	}

	// Incremental: extend from the day after the latest cached bar.
	// Cold or forced: pull the whole lookback window.
	start := analysisDate.AddDate(0, 0, -klineLookbackDays)
	if !c.force && !latest.IsZero() {
		start = latest.AddDate(0, 0, 1)
	}
	if start.After(analysisDate) {
		return cached, nil
	}

	bars, err := c.vendor.Daily(ctx, symbol, start, analysisDate)
	if err != nil {
		if len(cached) > 0 {
			c.logger.WithError(err).WithField("symbol", symbol).
				Warn("Kline fetch failed, using cached series")
			return cached, nil
		}
		return nil, fmt.Errorf("klines unavailable for %s: %w", symbol, err)
	}

	fetched := make([]cache.Kline, 0, len(bars))
	for _, b := range bars {
		fetched = append(fetched, cache.Kline{
			Symbol: symbol,
			Period: cache.PeriodDaily,
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			Amount: b.Amount,
		})
	}

	merged := MergeKlines(cached, fetched)
	if len(merged) == 0 {
		return nil, nil
	}
	if err := c.store.SaveKlines(ctx, merged); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Kline cache write lost")
	}
	return merged, nil
}

// EnsureFundamentals returns valuation snapshots for the requested
// symbols. The vendor endpoint is whole-market per date, so one miss
// triggers at most one market-wide fetch per coordinator lifetime.
func (c *Coordinator) EnsureFundamentals(ctx context.Context, symbols []string, analysisDate time.Time) (map[string]*cache.Fundamental, error) {
	out := make(map[string]*cache.Fundamental, len(symbols))
	var misses []string
	for _, sym := range symbols {
		f, err := c.store.GetFundamental(ctx, sym, c.force)
		if err != nil {
			return nil, err
		}
		if f != nil {
			out[sym] = f
		} else {
			misses = append(misses, sym)
		}
	}
	if len(misses) == 0 || c.fundamentalsFetched {
		c.fillStaleFundamentals(ctx, misses, out)
		return out, nil
	}

	rows, err := c.vendor.DailyBasic(ctx, analysisDate)
	if err != nil {
		c.logger.WithError(err).Warn("Fundamentals fetch failed, falling back to cached rows")
		c.fillStaleFundamentals(ctx, misses, out)
		return out, nil
	}
	c.fundamentalsFetched = true

	fetched := make([]*cache.Fundamental, 0, len(rows))
	bySymbol := make(map[string]*cache.Fundamental, len(rows))
	for _, r := range rows {
		f := &cache.Fundamental{
			Symbol:       r.Symbol,
			PERatio:      r.PERatio,
			PBRatio:      r.PBRatio,
			TurnoverRate: r.TurnoverRate,
			VolumeRatio:  r.VolumeRatio,
			MarketCap:    r.MarketCap,
		}
		fetched = append(fetched, f)
		bySymbol[r.Symbol] = f
	}
	if err := c.store.BatchSaveFundamentals(ctx, fetched); err != nil {
		c.logger.WithError(err).Warn("Fundamentals cache write lost")
	}

	for _, sym := range misses {
		if f, ok := bySymbol[sym]; ok {
			out[sym] = f
		}
	}
	return out, nil
}

func (c *Coordinator) fillStaleFundamentals(ctx context.Context, misses []string, out map[string]*cache.Fundamental) {
	for _, sym := range misses {
		f, err := c.store.GetFundamentalStale(ctx, sym)
		if err == nil && f != nil {
			out[sym] = f
		}
	}
}

// EnsureFinancial returns the financial indicators for one symbol, or
// nil when neither vendor nor cache have any. A nil result is not an
// error; the scorer treats every metric as unknown.
func (c *Coordinator) EnsureFinancial(ctx context.Context, symbol string) (*cache.Financial, error) {
	f, err := c.store.GetFinancial(ctx, symbol, c.force)
	if err != nil {
		return nil, err
	}
	if f != nil {
		return f, nil
	}

	fi, err := c.vendor.FinaIndicator(ctx, symbol)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).
			Warn("Financials fetch failed, falling back to cached row")
		return c.store.GetFinancialStale(ctx, symbol)
	}
	if fi == nil {
		return nil, nil
	}

	f = &cache.Financial{
		Symbol:        symbol,
		ROE:           fi.ROE,
		Revenue:       fi.Revenue,
		NetIncome:     fi.NetIncome,
		RevenueGrowth: fi.RevenueGrowth,
		ProfitGrowth:  fi.ProfitGrowth,
		DebtRatio:     fi.DebtRatio,
	}
	if err := c.store.SaveFinancial(ctx, f); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Financials cache write lost")
	}
	return f, nil
}

// EnsureCalendar makes sure the trade calendar covers the analysis
// window and returns a view over it. A vendor failure keeps whatever
// calendar is already cached.
func (c *Coordinator) EnsureCalendar(ctx context.Context, now time.Time) (*cache.CalendarView, error) {
	days, err := c.store.GetCalendar(ctx)
	if err != nil {
		return nil, err
	}
	if days == nil || c.force {
		fetched, err := c.vendor.TradeCal(ctx, now.AddDate(-1, 0, 0), now.AddDate(0, 1, 0))
		if err != nil {
			c.logger.WithError(err).Warn("Trade calendar fetch failed, using cached calendar")
		} else {
			saved := make([]cache.CalendarDay, 0, len(fetched))
			for _, d := range fetched {
				saved = append(saved, cache.CalendarDay{Date: d.Date, IsOpen: d.IsOpen})
			}
			if err := c.store.SaveCalendar(ctx, saved); err != nil {
				c.logger.WithError(err).Warn("Trade calendar cache write lost")
			}
		}
	}
	return c.store.CalendarView(ctx)
}

// EnsureIndexWeights returns constituent weights for an index. A
// cached observation within the tolerance of the analysis date is
// used as is; index rebalancing is too slow to chase daily.
func (c *Coordinator) EnsureIndexWeights(ctx context.Context, indexCode string, analysisDate time.Time) ([]cache.IndexWeight, error) {
	latest, err := c.store.LatestIndexWeightDate(ctx, indexCode)
	if err != nil {
		return nil, err
	}
	if !c.force && !latest.IsZero() && analysisDate.Sub(latest) <= indexWeightTolerance {
		return c.store.GetIndexWeights(ctx, indexCode)
	}

	rows, err := c.vendor.IndexWeight(ctx, indexCode, analysisDate.AddDate(0, -1, 0), analysisDate)
	if err != nil {
		c.logger.WithError(err).WithField("index", indexCode).
			Warn("Index weight fetch failed, using cached weights")
		return c.store.GetIndexWeights(ctx, indexCode)
	}

	weights := make([]cache.IndexWeight, 0, len(rows))
	for _, r := range rows {
		weights = append(weights, cache.IndexWeight{
			IndexCode:   r.IndexCode,
			Constituent: r.Constituent,
			Date:        r.Date,
			Weight:      r.Weight,
		})
	}
	if len(weights) > 0 {
		if err := c.store.SaveIndexWeights(ctx, weights); err != nil {
			c.logger.WithError(err).WithField("index", indexCode).Warn("Index weight cache write lost")
		}
	}
	return c.store.GetIndexWeights(ctx, indexCode)
}
