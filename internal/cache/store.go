package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zhouql/stockpick/pkg/database"
	"github.com/zhouql/stockpick/pkg/logger"
)

// Retention for time-series tables: rows beyond this many trading
// days per key are pruned on every save.
const seriesRetention = 250

// Write-lock contention retries: linear backoff, 100ms per attempt.
const (
	busyRetries = 3
	busyBackoff = 100 * time.Millisecond
)

// Store is the local cache over the embedded database. It owns all
// persisted state; readers get nil for anything absent or stale, and
// cannot tell the two cases apart.
type Store struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	locks  map[DataType]*sync.Mutex
	mirror *mirror
}

// New creates the store and applies the schema.
func New(db *database.DB, log *logger.Logger) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.Conn().Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{
		db:     db,
		logger: log.WithField("module", "cache"),
		now:    time.Now,
		locks:  make(map[DataType]*sync.Mutex),
		mirror: newMirror(),
	}, nil
}

// typeLock returns the mutex serializing writers of one data type.
// Writers of different types do not contend.
func (s *Store) typeLock(dt DataType) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[dt]
	if !ok {
		l = &sync.Mutex{}
		s.locks[dt] = l
	}
	return l
}

// write runs fn under the type's writer lock, retrying on lock
// contention with linearly increasing backoff. After the last attempt
// the error is logged and returned; callers treat a lost write as
// non-fatal since the next run refetches.
func (s *Store) write(ctx context.Context, dt DataType, fn func() error) error {
	lock := s.typeLock(dt)
	lock.Lock()
	defer lock.Unlock()

	var err error
	for attempt := 1; attempt <= busyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		s.logger.WithFields(map[string]interface{}{
			"type":    string(dt),
			"attempt": attempt,
		}).Warn("Cache write contention, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}

	s.logger.WithError(err).WithField("type", string(dt)).Error("Cache write dropped after retries")
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// ForceInvalidateMirror clears the in-process read-through copies.
// Called at the start of a force-refresh run.
func (s *Store) ForceInvalidateMirror() {
	s.mirror.reset()
}

// --- fundamentals ---

// GetFundamental returns the cached row, or nil when no row exists,
// the row is stale, or force is set.
func (s *Store) GetFundamental(ctx context.Context, symbol string, force bool) (*Fundamental, error) {
	if force {
		s.mirror.dropFundamental(symbol)
		return nil, nil
	}

	if f, ok := s.mirror.getFundamental(symbol); ok {
		if fresh(TypeFundamental, f.UpdateTime, s.now()) {
			return f, nil
		}
		s.mirror.dropFundamental(symbol)
	}

	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT symbol, pe_ratio, pb_ratio, turnover_rate, volume_ratio, market_cap, update_time
		FROM fundamentals WHERE symbol = ?`, symbol)

	var f Fundamental
	var pe, pb, tr, vr, mc sql.NullFloat64
	var ut int64
	if err := row.Scan(&f.Symbol, &pe, &pb, &tr, &vr, &mc, &ut); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query fundamentals: %w", err)
	}
	f.PERatio = fromNull(pe)
	f.PBRatio = fromNull(pb)
	f.TurnoverRate = fromNull(tr)
	f.VolumeRatio = fromNull(vr)
	f.MarketCap = fromNull(mc)
	f.UpdateTime = time.Unix(ut, 0)

	if !fresh(TypeFundamental, f.UpdateTime, s.now()) {
		return nil, nil
	}

	s.mirror.putFundamental(&f)
	return &f, nil
}

// SaveFundamental upserts one row and stamps update_time.
func (s *Store) SaveFundamental(ctx context.Context, f *Fundamental) error {
	f.UpdateTime = s.now()
	err := s.write(ctx, TypeFundamental, func() error {
		_, err := s.db.Conn().ExecContext(ctx, `
			INSERT INTO fundamentals (symbol, pe_ratio, pb_ratio, turnover_rate, volume_ratio, market_cap, update_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (symbol) DO UPDATE SET
				pe_ratio      = excluded.pe_ratio,
				pb_ratio      = excluded.pb_ratio,
				turnover_rate = excluded.turnover_rate,
				volume_ratio  = excluded.volume_ratio,
				market_cap    = excluded.market_cap,
				update_time   = excluded.update_time`,
			f.Symbol, toNull(f.PERatio), toNull(f.PBRatio), toNull(f.TurnoverRate),
			toNull(f.VolumeRatio), toNull(f.MarketCap), f.UpdateTime.Unix(),
		)
		return err
	})
	if err != nil {
		return err
	}
	s.mirror.putFundamental(f)
	return nil
}

// BatchSaveFundamentals saves each row individually; the batch is not
// atomic and a contended row is retried on its own.
func (s *Store) BatchSaveFundamentals(ctx context.Context, rows []*Fundamental) error {
	var firstErr error
	for _, f := range rows {
		if err := s.SaveFundamental(ctx, f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// --- financials ---

// GetFinancial returns the cached row, or nil when absent, stale, or
// force is set.
func (s *Store) GetFinancial(ctx context.Context, symbol string, force bool) (*Financial, error) {
	if force {
		s.mirror.dropFinancial(symbol)
		return nil, nil
	}

	if f, ok := s.mirror.getFinancial(symbol); ok {
		if fresh(TypeFinancial, f.UpdateTime, s.now()) {
			return f, nil
		}
		s.mirror.dropFinancial(symbol)
	}

	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT symbol, roe, revenue, net_income, revenue_growth, profit_growth, debt_ratio, update_time
		FROM financials WHERE symbol = ?`, symbol)

	var f Financial
	var roe, rev, ni, rg, pg, dr sql.NullFloat64
	var ut int64
	if err := row.Scan(&f.Symbol, &roe, &rev, &ni, &rg, &pg, &dr, &ut); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query financials: %w", err)
	}
	f.ROE = fromNull(roe)
	f.Revenue = fromNull(rev)
	f.NetIncome = fromNull(ni)
	f.RevenueGrowth = fromNull(rg)
	f.ProfitGrowth = fromNull(pg)
	f.DebtRatio = fromNull(dr)
	f.UpdateTime = time.Unix(ut, 0)

	if !fresh(TypeFinancial, f.UpdateTime, s.now()) {
		return nil, nil
	}

	s.mirror.putFinancial(&f)
	return &f, nil
}

// SaveFinancial upserts one row and stamps update_time.
func (s *Store) SaveFinancial(ctx context.Context, f *Financial) error {
	f.UpdateTime = s.now()
	err := s.write(ctx, TypeFinancial, func() error {
		_, err := s.db.Conn().ExecContext(ctx, `
			INSERT INTO financials (symbol, roe, revenue, net_income, revenue_growth, profit_growth, debt_ratio, update_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (symbol) DO UPDATE SET
				roe            = excluded.roe,
				revenue        = excluded.revenue,
				net_income     = excluded.net_income,
				revenue_growth = excluded.revenue_growth,
				profit_growth  = excluded.profit_growth,
				debt_ratio     = excluded.debt_ratio,
				update_time    = excluded.update_time`,
			f.Symbol, toNull(f.ROE), toNull(f.Revenue), toNull(f.NetIncome),
			toNull(f.RevenueGrowth), toNull(f.ProfitGrowth), toNull(f.DebtRatio),
			f.UpdateTime.Unix(),
		)
		return err
	})
	if err != nil {
		return err
	}
	s.mirror.putFinancial(f)
	return nil
}

// BatchSaveFinancials saves each row individually.
func (s *Store) BatchSaveFinancials(ctx context.Context, rows []*Financial) error {
	var firstErr error
	for _, f := range rows {
		if err := s.SaveFinancial(ctx, f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// --- stock list ---

// GetStockList returns the cached universe, or nil when the list has
// not been refreshed inside its staleness window.
func (s *Store) GetStockList(ctx context.Context, force bool) ([]StockInfo, error) {
	if force {
		return nil, nil
	}

	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT symbol, name, market, COALESCE(list_date, ''), suspended, update_time
		FROM stock_list ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query stock_list: %w", err)
	}
	defer rows.Close()

	var list []StockInfo
	now := s.now()
	for rows.Next() {
		var si StockInfo
		var suspended int
		var ut int64
		if err := rows.Scan(&si.Symbol, &si.Name, &si.Market, &si.ListDate, &suspended, &ut); err != nil {
			return nil, err
		}
		si.Suspended = suspended != 0
		si.UpdateTime = time.Unix(ut, 0)
		if !fresh(TypeStockList, si.UpdateTime, now) {
			// One stale row means the whole list needs a refresh.
			return nil, rows.Err()
		}
		list = append(list, si)
	}
	return list, rows.Err()
}

// SaveStockList replaces the whole universe in one transaction.
func (s *Store) SaveStockList(ctx context.Context, list []StockInfo) error {
	now := s.now()
	return s.write(ctx, TypeStockList, func() error {
		tx, err := s.db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM stock_list`); err != nil {
			return err
		}
		for _, si := range list {
			suspended := 0
			if si.Suspended {
				suspended = 1
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO stock_list (symbol, name, market, list_date, suspended, update_time)
				VALUES (?, ?, ?, ?, ?, ?)`,
				si.Symbol, si.Name, si.Market, si.ListDate, suspended, now.Unix(),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// --- kline ---

// GetKlines returns the cached series ascending by date, regardless
// of staleness. The fetch coordinator decides whether the series
// needs extending from the latest cached date; stale rows are still
// the fallback when the vendor is down.
func (s *Store) GetKlines(ctx context.Context, symbol, period string) ([]Kline, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT symbol, period, date, open, high, low, close, volume, amount
		FROM kline WHERE symbol = ? AND period = ? ORDER BY date ASC`, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("query kline: %w", err)
	}
	defer rows.Close()

	var series []Kline
	for rows.Next() {
		var k Kline
		var dateStr string
		if err := rows.Scan(&k.Symbol, &k.Period, &dateStr, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume, &k.Amount); err != nil {
			return nil, err
		}
		k.Date, _ = time.Parse(dateLayout, dateStr)
		series = append(series, k)
	}
	return series, rows.Err()
}

// LatestKlineDate returns the newest cached bar date for a symbol,
// or a zero time when nothing is cached.
func (s *Store) LatestKlineDate(ctx context.Context, symbol, period string) (time.Time, error) {
	var dateStr sql.NullString
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT MAX(date) FROM kline WHERE symbol = ? AND period = ?`, symbol, period).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest kline date: %w", err)
	}
	if !dateStr.Valid || dateStr.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, dateStr.String)
}

// SaveKlines upserts bars and prunes the series to the retention
// window. Saving the same bars twice leaves the table unchanged
// except for update_time.
func (s *Store) SaveKlines(ctx context.Context, bars []Kline) error {
	if len(bars) == 0 {
		return nil
	}
	now := s.now()
	symbol, period := bars[0].Symbol, bars[0].Period

	return s.write(ctx, TypeKline, func() error {
		tx, err := s.db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, k := range bars {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO kline (symbol, period, date, open, high, low, close, volume, amount, update_time)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (symbol, period, date) DO UPDATE SET
					open        = excluded.open,
					high        = excluded.high,
					low         = excluded.low,
					close       = excluded.close,
					volume      = excluded.volume,
					amount      = excluded.amount,
					update_time = excluded.update_time`,
				k.Symbol, k.Period, k.Date.Format(dateLayout),
				k.Open, k.High, k.Low, k.Close, k.Volume, k.Amount, now.Unix(),
			); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM kline WHERE symbol = ? AND period = ? AND date NOT IN (
				SELECT date FROM kline WHERE symbol = ? AND period = ?
				ORDER BY date DESC LIMIT ?
			)`, symbol, period, symbol, period, seriesRetention,
		); err != nil {
			return err
		}

		return tx.Commit()
	})
}

// KlineFresh reports whether the cached series was written inside the
// kline staleness window.
func (s *Store) KlineFresh(ctx context.Context, symbol, period string) (bool, error) {
	var ut sql.NullInt64
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT MAX(update_time) FROM kline WHERE symbol = ? AND period = ?`, symbol, period).Scan(&ut)
	if err != nil {
		return false, err
	}
	if !ut.Valid {
		return false, nil
	}
	return fresh(TypeKline, time.Unix(ut.Int64, 0), s.now()), nil
}

// --- trade calendar ---

// GetCalendar returns the cached calendar rows when fresh, else nil.
func (s *Store) GetCalendar(ctx context.Context) ([]CalendarDay, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT date, is_open, update_time FROM trade_calendar ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query trade_calendar: %w", err)
	}
	defer rows.Close()

	var days []CalendarDay
	now := s.now()
	for rows.Next() {
		var d CalendarDay
		var dateStr string
		var isOpen int
		var ut int64
		if err := rows.Scan(&dateStr, &isOpen, &ut); err != nil {
			return nil, err
		}
		if !fresh(TypeTradeCalendar, time.Unix(ut, 0), now) {
			return nil, rows.Err()
		}
		d.Date, _ = time.Parse(dateLayout, dateStr)
		d.IsOpen = isOpen != 0
		days = append(days, d)
	}
	return days, rows.Err()
}

// SaveCalendar upserts calendar rows.
func (s *Store) SaveCalendar(ctx context.Context, days []CalendarDay) error {
	now := s.now()
	return s.write(ctx, TypeTradeCalendar, func() error {
		tx, err := s.db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, d := range days {
			isOpen := 0
			if d.IsOpen {
				isOpen = 1
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO trade_calendar (date, is_open, update_time)
				VALUES (?, ?, ?)
				ON CONFLICT (date) DO UPDATE SET
					is_open     = excluded.is_open,
					update_time = excluded.update_time`,
				d.Date.Format(dateLayout), isOpen, now.Unix(),
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// CalendarView loads whatever calendar rows exist, fresh or not, into
// a market.Calendar implementation. Staleness is deliberately ignored
// here: an old calendar still answers holidays correctly for past
// dates, which is all AnalysisDate needs.
func (s *Store) CalendarView(ctx context.Context) (*CalendarView, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT date, is_open FROM trade_calendar`)
	if err != nil {
		return nil, fmt.Errorf("query trade_calendar: %w", err)
	}
	defer rows.Close()

	view := &CalendarView{days: make(map[string]bool)}
	for rows.Next() {
		var dateStr string
		var isOpen int
		if err := rows.Scan(&dateStr, &isOpen); err != nil {
			return nil, err
		}
		view.days[dateStr] = isOpen != 0
	}
	return view, rows.Err()
}

// CalendarView implements market.Calendar over cached rows.
type CalendarView struct {
	days map[string]bool
}

// NewCalendarView builds a view from explicit days, keyed by
// YYYY-MM-DD. Used by tests and the bootstrap path.
func NewCalendarView(days map[string]bool) *CalendarView {
	if days == nil {
		days = make(map[string]bool)
	}
	return &CalendarView{days: days}
}

// IsOpen reports (open, known) for a date.
func (v *CalendarView) IsOpen(date time.Time) (bool, bool) {
	open, known := v.days[date.Format(dateLayout)]
	return open, known
}

// Len returns the number of known calendar days.
func (v *CalendarView) Len() int {
	return len(v.days)
}

// --- index weights ---

// LatestIndexWeightDate returns the newest cached observation date
// for an index, or zero time.
func (s *Store) LatestIndexWeightDate(ctx context.Context, indexCode string) (time.Time, error) {
	var dateStr sql.NullString
	err := s.db.Conn().QueryRowContext(ctx, `
		SELECT MAX(date) FROM index_weight WHERE index_code = ?`, indexCode).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest index weight date: %w", err)
	}
	if !dateStr.Valid || dateStr.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, dateStr.String)
}

// GetIndexWeights returns the constituent weights for the newest
// cached date of an index.
func (s *Store) GetIndexWeights(ctx context.Context, indexCode string) ([]IndexWeight, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT index_code, date, constituent, weight FROM index_weight
		WHERE index_code = ? AND date = (SELECT MAX(date) FROM index_weight WHERE index_code = ?)
		ORDER BY constituent`, indexCode, indexCode)
	if err != nil {
		return nil, fmt.Errorf("query index_weight: %w", err)
	}
	defer rows.Close()

	var weights []IndexWeight
	for rows.Next() {
		var w IndexWeight
		var dateStr string
		if err := rows.Scan(&w.IndexCode, &dateStr, &w.Constituent, &w.Weight); err != nil {
			return nil, err
		}
		w.Date, _ = time.Parse(dateLayout, dateStr)
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// SaveIndexWeights upserts weight rows and prunes old observation
// dates beyond the retention window.
func (s *Store) SaveIndexWeights(ctx context.Context, weights []IndexWeight) error {
	if len(weights) == 0 {
		return nil
	}
	now := s.now()
	indexCode := weights[0].IndexCode

	return s.write(ctx, TypeIndexWeight, func() error {
		tx, err := s.db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, w := range weights {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO index_weight (index_code, date, constituent, weight, update_time)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (index_code, date, constituent) DO UPDATE SET
					weight      = excluded.weight,
					update_time = excluded.update_time`,
				w.IndexCode, w.Date.Format(dateLayout), w.Constituent, w.Weight, now.Unix(),
			); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM index_weight WHERE index_code = ? AND date NOT IN (
				SELECT DISTINCT date FROM index_weight WHERE index_code = ?
				ORDER BY date DESC LIMIT ?
			)`, indexCode, indexCode, seriesRetention,
		); err != nil {
			return err
		}

		return tx.Commit()
	})
}

// --- maintenance ---

var tableForType = map[DataType]string{
	TypeFundamental:   "fundamentals",
	TypeFinancial:     "financials",
	TypeStockList:     "stock_list",
	TypeKline:         "kline",
	TypeTradeCalendar: "trade_calendar",
	TypeIndexWeight:   "index_weight",
}

var keyColumnForType = map[DataType]string{
	TypeFundamental:   "symbol",
	TypeFinancial:     "symbol",
	TypeStockList:     "symbol",
	TypeKline:         "symbol",
	TypeTradeCalendar: "date",
	TypeIndexWeight:   "index_code",
}

// Invalidate deletes matching rows. An empty key clears the whole
// type.
func (s *Store) Invalidate(ctx context.Context, dt DataType, key string) error {
	table, ok := tableForType[dt]
	if !ok {
		return fmt.Errorf("unknown data type %q", dt)
	}

	switch dt {
	case TypeFundamental:
		s.mirror.dropFundamental(key)
	case TypeFinancial:
		s.mirror.dropFinancial(key)
	}

	return s.write(ctx, dt, func() error {
		if key == "" {
			_, err := s.db.Conn().ExecContext(ctx, `DELETE FROM `+table)
			return err
		}
		_, err := s.db.Conn().ExecContext(ctx,
			`DELETE FROM `+table+` WHERE `+keyColumnForType[dt]+` = ?`, key)
		return err
	})
}

// A time series untouched for this long has no run reading it
// anymore. Only then is the whole series reaped; individual stale
// bars must survive cleanup because they carry the retention history
// and the vendor-outage fallback.
const seriesReapAfter = 30 * 24 * time.Hour

// Cleanup physically removes rows the staleness window has long
// passed. Snapshot tables (fundamentals, financials, trade calendar)
// reap per row. Time-series tables are stamped incrementally on each
// save, so a row's age says nothing about whether its series is
// live; they are pruned to the retention window on every save, and
// only series with no save at all for a month (delisted or dropped
// symbols) are reaped here. The stock list is replaced wholesale on
// refresh and doubles as the vendor-outage fallback, so it is never
// reaped.
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	var total int64
	now := s.now()

	reap := func(dt DataType, stmt string, args ...interface{}) error {
		var affected int64
		err := s.write(ctx, dt, func() error {
			res, err := s.db.Conn().ExecContext(ctx, stmt, args...)
			if err != nil {
				return err
			}
			affected, _ = res.RowsAffected()
			return nil
		})
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", tableForType[dt], err)
		}
		total += affected
		return nil
	}

	for _, dt := range []DataType{TypeFundamental, TypeFinancial, TypeTradeCalendar} {
		cutoff := now.Add(-StalenessWindow(dt)).Unix()
		err := reap(dt, `DELETE FROM `+tableForType[dt]+` WHERE update_time < ?`, cutoff)
		if err != nil {
			return total, err
		}
	}

	seriesCutoff := now.Add(-seriesReapAfter).Unix()
	if err := reap(TypeKline, `
		DELETE FROM kline WHERE (symbol, period) IN (
			SELECT symbol, period FROM kline
			GROUP BY symbol, period HAVING MAX(update_time) < ?
		)`, seriesCutoff); err != nil {
		return total, err
	}
	if err := reap(TypeIndexWeight, `
		DELETE FROM index_weight WHERE index_code IN (
			SELECT index_code FROM index_weight
			GROUP BY index_code HAVING MAX(update_time) < ?
		)`, seriesCutoff); err != nil {
		return total, err
	}

	s.mirror.reset()
	return total, nil
}

// CountRows returns the row count of one type's table. Used by the
// status command and the report API.
func (s *Store) CountRows(ctx context.Context, dt DataType) (int64, error) {
	table, ok := tableForType[dt]
	if !ok {
		return 0, fmt.Errorf("unknown data type %q", dt)
	}
	var n int64
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

// --- helpers ---

func toNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
