package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Stale readers. The freshness-checked getters answer "can this run
// skip the vendor"; these answer "what do we still have when the
// vendor is down". They ignore update_time entirely.

// GetFundamentalStale returns whatever row exists for the symbol.
func (s *Store) GetFundamentalStale(ctx context.Context, symbol string) (*Fundamental, error) {
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
	return &f, nil
}

// GetFinancialStale returns whatever row exists for the symbol.
func (s *Store) GetFinancialStale(ctx context.Context, symbol string) (*Financial, error) {
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
	return &f, nil
}

// StockListSnapshot returns the stored universe regardless of age.
func (s *Store) StockListSnapshot(ctx context.Context) ([]StockInfo, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT symbol, name, market, COALESCE(list_date, ''), suspended, update_time
		FROM stock_list ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query stock_list: %w", err)
	}
	defer rows.Close()

	var list []StockInfo
	for rows.Next() {
		var si StockInfo
		var suspended int
		var ut int64
		if err := rows.Scan(&si.Symbol, &si.Name, &si.Market, &si.ListDate, &suspended, &ut); err != nil {
			return nil, err
		}
		si.Suspended = suspended != 0
		si.UpdateTime = time.Unix(ut, 0)
		list = append(list, si)
	}
	return list, rows.Err()
}
