package cache

import "time"

// stalenessDays is the per-type freshness window. A record whose
// update_time is older than this is treated as absent on read; it is
// only physically removed by Cleanup.
var stalenessDays = map[DataType]int{
	TypeFundamental:   7,
	TypeFinancial:     7,
	TypeStockList:     1,
	TypeKline:         1,
	TypeTradeCalendar: 7,
	TypeIndexWeight:   1,
}

// StalenessWindow returns the freshness window for a data type.
func StalenessWindow(dt DataType) time.Duration {
	days, ok := stalenessDays[dt]
	if !ok {
		days = 1
	}
	return time.Duration(days) * 24 * time.Hour
}

// fresh reports whether a record written at updateTime is still
// usable at instant now.
func fresh(dt DataType, updateTime, now time.Time) bool {
	if updateTime.IsZero() {
		return false
	}
	return now.Sub(updateTime) <= StalenessWindow(dt)
}
