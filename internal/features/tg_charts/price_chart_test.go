package tg_charts

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jetpump-terminal/internal/features/tokenview"
)

func series(prices ...float64) []tokenview.PricePoint {
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	out := make([]tokenview.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = tokenview.PricePoint{Time: base.Add(time.Duration(i) * 15 * time.Second), PriceSOL: p}
	}
	return out
}

func TestGeneratePriceChart(t *testing.T) {
	dir := t.TempDir()

	path, err := GeneratePriceChart(dir, "TST", series(0.001, 0.0012, 0.0011, 0.0015, 0.002))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGeneratePriceChartFlatSeries(t *testing.T) {
	dir := t.TempDir()

	path, err := GeneratePriceChart(dir, "FLAT", series(0.5, 0.5, 0.5))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestGeneratePriceChartNeedsTwoPoints(t *testing.T) {
	_, err := GeneratePriceChart(t.TempDir(), "X", series(1))
	assert.Error(t, err)

	_, err = GeneratePriceChart(t.TempDir(), "X", nil)
	assert.Error(t, err)
}
