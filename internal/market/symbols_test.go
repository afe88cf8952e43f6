package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical passthrough", input: "600000.SH", want: "600000.SH"},
		{name: "lowercase suffix", input: "000001.sz", want: "000001.SZ"},
		{name: "bare shanghai code", input: "600519", want: "600519.SH"},
		{name: "bare shenzhen code", input: "000858", want: "000858.SZ"},
		{name: "bare chinext code", input: "300750", want: "300750.SZ"},
		{name: "bare beijing code", input: "430047", want: "430047.BJ"},
		{name: "prefix form", input: "sh600000", want: "600000.SH"},
		{name: "prefix form upper", input: "SZ000001", want: "000001.SZ"},
		{name: "whitespace", input: " 600000.SH ", want: "600000.SH"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "60000", wantErr: true},
		{name: "not digits", input: "60000A", wantErr: true},
		{name: "bad suffix", input: "600000.XX", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitSymbol(t *testing.T) {
	code, ex := SplitSymbol("600000.SH")
	assert.Equal(t, "600000", code)
	assert.Equal(t, "SH", ex)
}

func TestMarketOf(t *testing.T) {
	assert.Equal(t, "main", MarketOf("600000.SH"))
	assert.Equal(t, "main", MarketOf("000001.SZ"))
	assert.Equal(t, "gem", MarketOf("300750.SZ"))
	assert.Equal(t, "star", MarketOf("688981.SH"))
	assert.Equal(t, "bse", MarketOf("430047.BJ"))
}

func TestIsSTName(t *testing.T) {
	assert.True(t, IsSTName("ST长油"))
	assert.True(t, IsSTName("*ST海润"))
	assert.True(t, IsSTName("退市博元"))
	assert.False(t, IsSTName("贵州茅台"))
	assert.False(t, IsSTName("平安银行"))
}
