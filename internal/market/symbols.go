package market

import (
	"fmt"
	"strings"
)

// Market segment suffixes used in canonical symbols.
const (
	ExchangeShanghai = "SH"
	ExchangeShenzhen = "SZ"
	ExchangeBeijing  = "BJ"
)

// NormalizeSymbol converts any of the commonly seen A-share symbol
// spellings into the canonical form "600000.SH". Accepted inputs:
// bare six-digit codes ("600000"), lowercase or uppercase suffix
// forms ("600000.sh"), and exchange-prefix forms ("sh600000").
func NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty symbol")
	}

	// Prefix form: SH600000 / SZ000001 / BJ430047
	for _, ex := range []string{ExchangeShanghai, ExchangeShenzhen, ExchangeBeijing} {
		if strings.HasPrefix(s, ex) && len(s) == len(ex)+6 {
			s = s[len(ex):] + "." + ex
			break
		}
	}

	if i := strings.IndexByte(s, '.'); i >= 0 {
		code, ex := s[:i], s[i+1:]
		if !isSixDigits(code) {
			return "", fmt.Errorf("invalid stock code %q", raw)
		}
		switch ex {
		case ExchangeShanghai, ExchangeShenzhen, ExchangeBeijing:
			return code + "." + ex, nil
		}
		return "", fmt.Errorf("unknown exchange suffix %q", raw)
	}

	if !isSixDigits(s) {
		return "", fmt.Errorf("invalid stock code %q", raw)
	}

	return s + "." + exchangeForCode(s), nil
}

// SplitSymbol splits a canonical symbol into code and exchange.
func SplitSymbol(symbol string) (code, exchange string) {
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return symbol, ""
}

// MarketOf reports the market segment a canonical symbol belongs to:
// "main" (Shanghai/Shenzhen main boards), "gem" (ChiNext 300xxx),
// "star" (STAR Market 688xxx), or "bse" (Beijing).
func MarketOf(symbol string) string {
	code, exchange := SplitSymbol(symbol)
	switch {
	case exchange == ExchangeBeijing:
		return "bse"
	case strings.HasPrefix(code, "688"):
		return "star"
	case strings.HasPrefix(code, "300") || strings.HasPrefix(code, "301"):
		return "gem"
	default:
		return "main"
	}
}

// IsSTName reports whether a stock display name carries an ST or
// delisting-risk flag. Those names are excluded from the universe.
func IsSTName(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "*", "")
	return strings.HasPrefix(n, "ST") || strings.HasPrefix(n, "S*ST") || strings.Contains(n, "退")
}

// exchangeForCode infers the exchange from the code prefix. This is
// only used when the input has no explicit exchange.
func exchangeForCode(code string) string {
	switch code[0] {
	case '6':
		return ExchangeShanghai
	case '0', '3':
		return ExchangeShenzhen
	case '4', '8', '9':
		return ExchangeBeijing
	default:
		return ExchangeShanghai
	}
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
