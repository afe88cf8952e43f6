package cache

// One table per data type. update_time is unix seconds and drives the
// staleness check; the column name is shared with the Python-era
// store so an existing database file keeps working.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS fundamentals (
		symbol        TEXT PRIMARY KEY,
		pe_ratio      REAL,
		pb_ratio      REAL,
		turnover_rate REAL,
		volume_ratio  REAL,
		market_cap    REAL,
		update_time   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS financials (
		symbol         TEXT PRIMARY KEY,
		roe            REAL,
		revenue        REAL,
		net_income     REAL,
		revenue_growth REAL,
		profit_growth  REAL,
		debt_ratio     REAL,
		update_time    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_list (
		symbol      TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		market      TEXT NOT NULL,
		list_date   TEXT,
		suspended   INTEGER NOT NULL DEFAULT 0,
		update_time INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS kline (
		symbol      TEXT NOT NULL,
		period      TEXT NOT NULL,
		date        TEXT NOT NULL,
		open        REAL NOT NULL,
		high        REAL NOT NULL,
		low         REAL NOT NULL,
		close       REAL NOT NULL,
		volume      REAL NOT NULL,
		amount      REAL NOT NULL,
		update_time INTEGER NOT NULL,
		PRIMARY KEY (symbol, period, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kline_symbol_period ON kline (symbol, period, date DESC)`,
	`CREATE TABLE IF NOT EXISTS trade_calendar (
		date        TEXT PRIMARY KEY,
		is_open     INTEGER NOT NULL,
		update_time INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS index_weight (
		index_code  TEXT NOT NULL,
		date        TEXT NOT NULL,
		constituent TEXT NOT NULL,
		weight      REAL NOT NULL,
		update_time INTEGER NOT NULL,
		PRIMARY KEY (index_code, date, constituent)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		run_date          TEXT NOT NULL,
		symbol            TEXT NOT NULL,
		name              TEXT NOT NULL DEFAULT '',
		rank              INTEGER NOT NULL,
		total_score       REAL NOT NULL,
		fundamental_score REAL NOT NULL,
		volume_score      REAL NOT NULL,
		price_score       REAL NOT NULL,
		created_at        INTEGER NOT NULL,
		PRIMARY KEY (run_date, symbol)
	)`,
}
