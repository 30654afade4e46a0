package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarketCap(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0, 1, "0"},
		{"under a thousand", 999, 1, "999"},
		{"thousands", 1500, 1, "1.5K"},
		{"round thousands", 2000, 1, "2.0K"},
		{"millions", 4_250_000, 1, "4.2M"},
		{"billions", 2_300_000_000, 1, "2.3B"},
		{"trillions", 7_100_000_000_000, 1, "7.1T"},
		{"two decimals", 1500, 2, "1.50K"},
		{"no decimals", 1500, 0, "2K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarketCap(tt.value, tt.decimals))
		})
	}
}

func TestTimeElapsed(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"garbage", "not-a-date", ""},
		{"seconds", now.Add(-30 * time.Second).Format(time.RFC3339), "30s"},
		{"ninety seconds is a minute", now.Add(-90 * time.Second).Format(time.RFC3339), "1m"},
		{"two hours", now.Add(-2 * time.Hour).Format(time.RFC3339), "2h"},
		{"three days", now.Add(-72 * time.Hour).Format(time.RFC3339), "3d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeElapsed(tt.in))
		})
	}
}

func TestTokenPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{"zero", 0, "0"},
		{"whole", 2, "2"},
		{"cents", 0.05, "0.05"},
		{"smallest plain", 0.001, "0.001"},
		{"dust", 0.00000123, "1.23e-6"},
		{"deep dust", 0.000000004, "4e-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenPrice(tt.price))
		})
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "0.01", Amount(0.01))
	assert.Equal(t, "1", Amount(1.0))
	assert.Equal(t, "2.5", Amount(2.5))
	assert.Equal(t, "0.1235", Amount(0.12345))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "So1...112", ShortAddress("So11111111111111111111111111111111111111112", 3))
	assert.Equal(t, "abc", ShortAddress("abc", 3))
	assert.Equal(t, "abcdef", ShortAddress("abcdef", 3))
}
