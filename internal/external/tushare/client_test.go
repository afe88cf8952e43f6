package tushare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouql/stockpick/pkg/config"
	"github.com/zhouql/stockpick/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Tushare.Token = "test-token"
	cfg.Tushare.BaseURL = srv.URL
	cfg.Tushare.Timeout = 5 * time.Second
	cfg.Tushare.PaceDelay = time.Millisecond
	cfg.Tushare.MaxRetries = 1

	return New(cfg, logger.NewNop(), nil)
}

func TestDailyParsesColumnarPayloadAscending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "daily", req.APIName)
		assert.Equal(t, "test-token", req.Token)
		assert.Equal(t, "600000.SH", req.Params["ts_code"])

		// Vendor order is newest first.
		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"ts_code", "trade_date", "open", "high", "low", "close", "vol", "amount"},
				Items: [][]interface{}{
					{"600000.SH", "20250612", 10.1, 10.5, 10.0, 10.4, 120000.0, 1250000.0},
					{"600000.SH", "20250611", 10.0, 10.2, 9.9, 10.1, 110000.0, 1110000.0},
				},
			},
		})
	})

	bars, err := client.Daily(context.Background(), "600000.SH",
		time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2025-06-11", bars[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-06-12", bars[1].Date.Format("2006-01-02"))
	assert.Equal(t, 10.4, bars[1].Close)
}

func TestDailyBasicKeepsNullDistinctFromZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"ts_code", "trade_date", "pe", "pb", "turnover_rate", "volume_ratio", "total_mv"},
				Items: [][]interface{}{
					{"600000.SH", "20250612", nil, 0.0, 1.5, nil, 200000.0},
				},
			},
		})
	})

	rows, err := client.DailyBasic(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PERatio, "JSON null must stay nil")
	require.NotNil(t, rows[0].PBRatio)
	assert.Zero(t, *rows[0].PBRatio, "a real zero must stay a zero, not become nil")
	assert.Nil(t, rows[0].VolumeRatio)
}

func TestCallRejectsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{Code: 40203, Msg: "token quota exhausted"})
	})

	_, err := client.StockBasic(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40203")
	assert.Contains(t, err.Error(), "token quota exhausted")
}

func TestStockBasicFormatsListDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"ts_code", "name", "market", "list_date"},
				Items: [][]interface{}{
					{"600000.SH", "浦发银行", "主板", "19991110"},
					{"688001.SH", "华兴源创", "科创板", nil},
				},
			},
		})
	})

	stocks, err := client.StockBasic(context.Background())
	require.NoError(t, err)
	require.Len(t, stocks, 2)
	assert.Equal(t, "1999-11-10", stocks[0].ListDate)
	assert.Empty(t, stocks[1].ListDate)
}

func TestSuspendD(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "suspend_d", req.APIName)
		assert.Equal(t, "20250612", req.Params["trade_date"])
		assert.Equal(t, "S", req.Params["suspend_type"])

		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"ts_code"},
				Items: [][]interface{}{
					{"000001.SZ"},
					{"600123.SH"},
				},
			},
		})
	})

	codes, err := client.SuspendD(context.Background(), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001.SZ", "600123.SH"}, codes)
}

func TestTradeCal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"cal_date", "is_open"},
				Items: [][]interface{}{
					{"20250612", 1.0},
					{"20250613", 0.0},
				},
			},
		})
	})

	days, err := client.TradeCal(context.Background(),
		time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].IsOpen)
	assert.False(t, days[1].IsOpen)
}

func TestFinaIndicatorTakesNewestPeriod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Code: 0,
			Data: apiData{
				Fields: []string{"ts_code", "roe", "or_yoy", "netprofit_yoy", "debt_to_assets", "total_revenue_ps", "profit_dedt"},
				Items: [][]interface{}{
					{"600000.SH", 18.0, 25.0, 20.0, 55.2, 6.1, 41000.0},
					{"600000.SH", 16.5, 21.0, 15.0, 56.0, 5.8, 38000.0},
				},
			},
		})
	})

	fi, err := client.FinaIndicator(context.Background(), "600000.SH")
	require.NoError(t, err)
	require.NotNil(t, fi)
	assert.Equal(t, 18.0, *fi.ROE)
	assert.Equal(t, 25.0, *fi.RevenueGrowth)
}
