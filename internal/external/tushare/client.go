package tushare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zhouql/stockpick/pkg/config"
	"github.com/zhouql/stockpick/pkg/httputil"
	"github.com/zhouql/stockpick/pkg/logger"
	"github.com/zhouql/stockpick/pkg/redis"
)

const wireDateLayout = "20060102"

// Client talks to the vendor's JSON-over-POST API. All calls share
// one paced HTTP client; an optional distributed rate limiter guards
// the shared token when several processes run.
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	token   string
	baseURL string

	cooldownN int
	cooldown  time.Duration
	calls     atomic.Int64
}

// New builds the client from config. The caller must have verified
// the token via config.RequireVendor.
func New(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *Client {
	// Retry sleeps run 2.5s, 4.5s, 8.5s: doubling from 2s with a
	// fixed half-second pad each attempt.
	hc := httputil.NewWithTimeout(log, cfg.Tushare.Timeout).
		WithRetry(cfg.Tushare.MaxRetries, 2*time.Second).
		WithRetryOffset(500 * time.Millisecond).
		WithPacing(cfg.Tushare.PaceDelay)
	if limiter != nil {
		hc = hc.WithRateLimiter(limiter, redis.TushareRateLimit)
	}

	return &Client{
		http:      hc,
		logger:    log.WithField("module", "tushare"),
		token:     cfg.Tushare.Token,
		baseURL:   cfg.Tushare.BaseURL,
		cooldownN: cfg.Tushare.CooldownN,
		cooldown:  cfg.Tushare.Cooldown,
	}
}

// call performs one API invocation and returns the columnar payload.
func (c *Client) call(ctx context.Context, apiName string, params map[string]string, fields string) (*apiData, error) {
	if err := c.pauseIfDue(ctx); err != nil {
		return nil, err
	}

	req := apiRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("tushare %s: %w", apiName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tushare %s: unexpected status %d", apiName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tushare %s: read body: %w", apiName, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tushare %s: decode: %w", apiName, err)
	}
	if parsed.Code != 0 {
		return nil, fmt.Errorf("tushare %s: api error %d: %s", apiName, parsed.Code, parsed.Msg)
	}

	c.logger.WithFields(map[string]interface{}{
		"api":  apiName,
		"rows": len(parsed.Data.Items),
	}).Debug("Vendor call completed")

	return &parsed.Data, nil
}

// pauseIfDue inserts a longer cooldown every N calls. The vendor
// throttles bursty tokens even inside the per-minute quota.
func (c *Client) pauseIfDue(ctx context.Context) error {
	n := c.calls.Add(1)
	if c.cooldownN <= 0 || n%int64(c.cooldownN) != 0 {
		return nil
	}
	c.logger.WithField("calls", n).Debug("Cooldown pause")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cooldown):
		return nil
	}
}

// StockBasic returns the listed universe.
func (c *Client) StockBasic(ctx context.Context) ([]StockBasic, error) {
	data, err := c.call(ctx, "stock_basic",
		map[string]string{"list_status": "L"},
		"ts_code,name,market,list_date")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]StockBasic, 0, len(data.Items))
	for _, row := range data.Items {
		listDate := strVal(row, idx, "list_date")
		if len(listDate) == 8 {
			listDate = listDate[:4] + "-" + listDate[4:6] + "-" + listDate[6:]
		}
		out = append(out, StockBasic{
			Symbol:   strVal(row, idx, "ts_code"),
			Name:     strVal(row, idx, "name"),
			Market:   strVal(row, idx, "market"),
			ListDate: listDate,
		})
	}
	return out, nil
}

// SuspendD returns the symbols whose trading is suspended on a trade
// date.
func (c *Client) SuspendD(ctx context.Context, tradeDate time.Time) ([]string, error) {
	data, err := c.call(ctx, "suspend_d",
		map[string]string{
			"trade_date":   tradeDate.Format(wireDateLayout),
			"suspend_type": "S",
		},
		"ts_code")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]string, 0, len(data.Items))
	for _, row := range data.Items {
		out = append(out, strVal(row, idx, "ts_code"))
	}
	return out, nil
}

// DailyBasic returns valuation snapshots for every stock on a trade
// date.
func (c *Client) DailyBasic(ctx context.Context, tradeDate time.Time) ([]DailyBasic, error) {
	data, err := c.call(ctx, "daily_basic",
		map[string]string{"trade_date": tradeDate.Format(wireDateLayout)},
		"ts_code,trade_date,pe,pb,turnover_rate,volume_ratio,total_mv")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]DailyBasic, 0, len(data.Items))
	for _, row := range data.Items {
		d, _ := time.Parse(wireDateLayout, strVal(row, idx, "trade_date"))
		out = append(out, DailyBasic{
			Symbol:       strVal(row, idx, "ts_code"),
			TradeDate:    d,
			PERatio:      floatVal(row, idx, "pe"),
			PBRatio:      floatVal(row, idx, "pb"),
			TurnoverRate: floatVal(row, idx, "turnover_rate"),
			VolumeRatio:  floatVal(row, idx, "volume_ratio"),
			MarketCap:    floatVal(row, idx, "total_mv"),
		})
	}
	return out, nil
}

// FinaIndicator returns the most recent reporting-period indicators
// for one stock.
func (c *Client) FinaIndicator(ctx context.Context, symbol string) (*FinaIndicator, error) {
	data, err := c.call(ctx, "fina_indicator",
		map[string]string{"ts_code": symbol},
		"ts_code,roe,or_yoy,netprofit_yoy,debt_to_assets,total_revenue_ps,profit_dedt")
	if err != nil {
		return nil, err
	}
	if len(data.Items) == 0 {
		return nil, nil
	}

	// Rows come newest period first.
	idx := fieldIndex(data.Fields)
	row := data.Items[0]
	return &FinaIndicator{
		Symbol:        strVal(row, idx, "ts_code"),
		ROE:           floatVal(row, idx, "roe"),
		Revenue:       floatVal(row, idx, "total_revenue_ps"),
		NetIncome:     floatVal(row, idx, "profit_dedt"),
		RevenueGrowth: floatVal(row, idx, "or_yoy"),
		ProfitGrowth:  floatVal(row, idx, "netprofit_yoy"),
		DebtRatio:     floatVal(row, idx, "debt_to_assets"),
	}, nil
}

// Daily returns daily bars for a symbol over [start, end], ascending
// by date.
func (c *Client) Daily(ctx context.Context, symbol string, start, end time.Time) ([]DailyBar, error) {
	data, err := c.call(ctx, "daily",
		map[string]string{
			"ts_code":    symbol,
			"start_date": start.Format(wireDateLayout),
			"end_date":   end.Format(wireDateLayout),
		},
		"ts_code,trade_date,open,high,low,close,vol,amount")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]DailyBar, 0, len(data.Items))
	for _, row := range data.Items {
		d, err := time.Parse(wireDateLayout, strVal(row, idx, "trade_date"))
		if err != nil {
			continue
		}
		out = append(out, DailyBar{
			Symbol: strVal(row, idx, "ts_code"),
			Date:   d,
			Open:   floatOrZero(row, idx, "open"),
			High:   floatOrZero(row, idx, "high"),
			Low:    floatOrZero(row, idx, "low"),
			Close:  floatOrZero(row, idx, "close"),
			Volume: floatOrZero(row, idx, "vol"),
			Amount: floatOrZero(row, idx, "amount"),
		})
	}

	// The vendor returns newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// TradeCal returns the exchange calendar over [start, end].
func (c *Client) TradeCal(ctx context.Context, start, end time.Time) ([]TradeCalDay, error) {
	data, err := c.call(ctx, "trade_cal",
		map[string]string{
			"exchange":   "SSE",
			"start_date": start.Format(wireDateLayout),
			"end_date":   end.Format(wireDateLayout),
		},
		"cal_date,is_open")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]TradeCalDay, 0, len(data.Items))
	for _, row := range data.Items {
		d, err := time.Parse(wireDateLayout, strVal(row, idx, "cal_date"))
		if err != nil {
			continue
		}
		out = append(out, TradeCalDay{Date: d, IsOpen: floatOrZero(row, idx, "is_open") != 0})
	}
	return out, nil
}

// IndexWeight returns constituent weights for an index over a date
// range.
func (c *Client) IndexWeight(ctx context.Context, indexCode string, start, end time.Time) ([]IndexWeightRow, error) {
	data, err := c.call(ctx, "index_weight",
		map[string]string{
			"index_code": indexCode,
			"start_date": start.Format(wireDateLayout),
			"end_date":   end.Format(wireDateLayout),
		},
		"index_code,con_code,trade_date,weight")
	if err != nil {
		return nil, err
	}

	idx := fieldIndex(data.Fields)
	out := make([]IndexWeightRow, 0, len(data.Items))
	for _, row := range data.Items {
		d, err := time.Parse(wireDateLayout, strVal(row, idx, "trade_date"))
		if err != nil {
			continue
		}
		out = append(out, IndexWeightRow{
			IndexCode:   strVal(row, idx, "index_code"),
			Constituent: strVal(row, idx, "con_code"),
			Date:        d,
			Weight:      floatOrZero(row, idx, "weight"),
		})
	}
	return out, nil
}

// --- columnar helpers ---

func fieldIndex(fields []string) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}
	return idx
}

func strVal(row []interface{}, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

// floatVal keeps the null/zero distinction: a JSON null comes back as
// nil, a real 0 as a pointer to 0.
func floatVal(row []interface{}, idx map[string]int, field string) *float64 {
	i, ok := idx[field]
	if !ok || i >= len(row) || row[i] == nil {
		return nil
	}
	switch v := row[i].(type) {
	case float64:
		f := v
		return &f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func floatOrZero(row []interface{}, idx map[string]int, field string) float64 {
	if v := floatVal(row, idx, field); v != nil {
		return *v
	}
	return 0
}
