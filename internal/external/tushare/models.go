package tushare

import "time"

// Wire format of the vendor API. Every call POSTs a request envelope
// and gets back a columnar table: field names once, then row arrays.
type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields,omitempty"`
}

type apiResponse struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	Data apiData `json:"data"`
}

type apiData struct {
	Fields []string        `json:"fields"`
	Items  [][]interface{} `json:"items"`
}

// StockBasic is one row of the listed-universe endpoint.
type StockBasic struct {
	Symbol   string // ts_code, e.g. "600000.SH"
	Name     string
	Market   string // vendor market label
	ListDate string // YYYY-MM-DD, may be empty
}

// DailyBasic carries the per-stock valuation snapshot. Pointer fields
// stay nil when the vendor returns null; null and zero are different
// facts and must survive the trip.
type DailyBasic struct {
	Symbol       string
	TradeDate    time.Time
	PERatio      *float64
	PBRatio      *float64
	TurnoverRate *float64
	VolumeRatio  *float64
	MarketCap    *float64
}

// FinaIndicator carries the latest-period financial indicators.
type FinaIndicator struct {
	Symbol        string
	ROE           *float64
	Revenue       *float64
	NetIncome     *float64
	RevenueGrowth *float64
	ProfitGrowth  *float64
	DebtRatio     *float64
}

// DailyBar is one daily OHLCV bar.
type DailyBar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
}

// TradeCalDay is one exchange calendar entry.
type TradeCalDay struct {
	Date   time.Time
	IsOpen bool
}

// IndexWeightRow is one index constituent weight observation.
type IndexWeightRow struct {
	IndexCode   string
	Constituent string
	Date        time.Time
	Weight      float64
}
