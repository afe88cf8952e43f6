package cache

import "time"

// DataType identifies one cached table. Each type carries its own
// staleness window (see policy.go) and its own writer lock.
type DataType string

const (
	TypeFundamental   DataType = "fundamentals"
	TypeFinancial     DataType = "financials"
	TypeStockList     DataType = "stock_list"
	TypeKline         DataType = "kline"
	TypeTradeCalendar DataType = "trade_calendar"
	TypeIndexWeight   DataType = "index_weight"
)

// AllTypes lists every cached data type.
var AllTypes = []DataType{
	TypeFundamental,
	TypeFinancial,
	TypeStockList,
	TypeKline,
	TypeTradeCalendar,
	TypeIndexWeight,
}

// Fundamental holds daily valuation metrics for one symbol. Pointer
// fields distinguish "vendor returned null" from a legitimate zero;
// a loss-making company has a nil or zero PE depending on the vendor
// and the two must not be conflated downstream.
type Fundamental struct {
	Symbol       string
	PERatio      *float64
	PBRatio      *float64
	TurnoverRate *float64
	VolumeRatio  *float64
	MarketCap    *float64 // total market cap, CNY
	UpdateTime   time.Time
}

// Financial holds the latest reported financial indicators for one
// symbol.
type Financial struct {
	Symbol        string
	ROE           *float64
	Revenue       *float64
	NetIncome     *float64
	RevenueGrowth *float64 // YoY, percent
	ProfitGrowth  *float64 // YoY, percent
	DebtRatio     *float64
	UpdateTime    time.Time
}

// StockInfo is one row of the listed-stock universe.
type StockInfo struct {
	Symbol     string
	Name       string
	Market     string // main, gem, star, bse
	ListDate   string // YYYY-MM-DD, may be empty
	Suspended  bool
	UpdateTime time.Time
}

// Kline is one daily OHLCV bar.
type Kline struct {
	Symbol string
	Period string // "daily"
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Amount float64
}

// PeriodDaily is the only period this tool fetches today. The column
// exists so weekly bars can be added without a schema change.
const PeriodDaily = "daily"

// CalendarDay is one trading-calendar entry.
type CalendarDay struct {
	Date   time.Time
	IsOpen bool
}

// IndexWeight is one index-constituent weight observation.
type IndexWeight struct {
	IndexCode   string
	Constituent string
	Date        time.Time
	Weight      float64
}

// Recommendation is a persisted snapshot row of one ranked pick. It
// is a historical record of what a run recommended, not a cached
// input: staleness rules never apply to it and nothing refetches it.
type Recommendation struct {
	RunDate          time.Time
	Symbol           string
	Name             string
	Rank             int
	TotalScore       float64
	FundamentalScore float64
	VolumeScore      float64
	PriceScore       float64
	CreatedAt        time.Time
}

const dateLayout = "2006-01-02"
