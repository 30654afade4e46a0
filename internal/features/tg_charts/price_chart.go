package tg_charts

// Price line chart for the token screen, rendered to a PNG that the bot
// sends as a photo.

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"jetpump-terminal/internal/features/tokenview"
	"jetpump-terminal/internal/format"
	logging "jetpump-terminal/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	chartWidth  = 1200
	chartHeight = 675

	chartAreaLeft   = 140.0
	chartAreaRight  = 1150.0
	chartAreaTop    = 120.0
	chartAreaBottom = 600.0

	gridLinesCount = 4

	titleFontSize = 36.0
	axisFontSize  = 22.0

	titleX = 60.0
	titleY = 70.0

	timeLabelOffsetY = 36.0
)

var fontPaths = []string{
	"etc/fonts/InterVariable.ttf",
	"etc/fonts/Inter-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// GeneratePriceChart renders the price series of one token and returns the
// path of the saved PNG.
func GeneratePriceChart(chartsDir, symbol string, points []tokenview.PricePoint) (string, error) {
	if len(points) < 2 {
		return "", fmt.Errorf("not enough price points to draw a chart: %d", len(points))
	}

	minPrice := points[0].PriceSOL
	maxPrice := points[0].PriceSOL
	for _, p := range points {
		if p.PriceSOL < minPrice {
			minPrice = p.PriceSOL
		}
		if p.PriceSOL > maxPrice {
			maxPrice = p.PriceSOL
		}
	}
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		// Flat series still gets a visible line in the middle.
		priceRange = maxPrice
		if priceRange == 0 {
			priceRange = 1
		}
		minPrice = maxPrice - priceRange/2
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(color.Black)
	dc.Clear()

	fontLoaded := false
	var loadedFontPath string
	for _, fontPath := range fontPaths {
		if _, err := os.Stat(fontPath); err == nil {
			if err := dc.LoadFontFace(fontPath, titleFontSize); err == nil {
				fontLoaded = true
				loadedFontPath = fontPath
				break
			}
		}
	}
	if !fontLoaded {
		logging.LogWarn("No chart font found, using default", zap.Int("paths_checked", len(fontPaths)))
	}

	dc.SetColor(color.White)
	title := fmt.Sprintf("%s / SOL", symbol)
	dc.DrawString(title, titleX, titleY)

	if fontLoaded {
		dc.LoadFontFace(loadedFontPath, axisFontSize)
	}

	chartAreaHeight := chartAreaBottom - chartAreaTop
	chartAreaWidth := chartAreaRight - chartAreaLeft

	// Horizontal grid with price labels.
	dc.SetLineWidth(1)
	for i := 0; i <= gridLinesCount; i++ {
		frac := float64(i) / float64(gridLinesCount)
		y := chartAreaBottom - frac*chartAreaHeight
		price := minPrice + frac*priceRange

		dc.SetColor(color.RGBA{60, 60, 60, 255})
		dc.DrawLine(chartAreaLeft, y, chartAreaRight, y)
		dc.Stroke()

		dc.SetColor(color.RGBA{170, 170, 170, 255})
		label := format.TokenPrice(price)
		w, h := dc.MeasureString(label)
		dc.DrawString(label, chartAreaLeft-w-12, y+h/2)
	}

	// Time labels under the first, middle and last points.
	dc.SetColor(color.RGBA{170, 170, 170, 255})
	for _, idx := range []int{0, len(points) / 2, len(points) - 1} {
		x := chartAreaLeft + float64(idx)/float64(len(points)-1)*chartAreaWidth
		label := points[idx].Time.Format("15:04:05")
		w, _ := dc.MeasureString(label)
		dc.DrawString(label, x-w/2, chartAreaBottom+timeLabelOffsetY)
	}

	// Green for a rising series, red for falling.
	lineColor := color.RGBA{34, 197, 94, 255}
	if points[len(points)-1].PriceSOL < points[0].PriceSOL {
		lineColor = color.RGBA{239, 68, 68, 255}
	}
	dc.SetColor(lineColor)
	dc.SetLineWidth(3)

	for i, p := range points {
		x := chartAreaLeft + float64(i)/float64(len(points)-1)*chartAreaWidth
		y := chartAreaBottom - (p.PriceSOL-minPrice)/priceRange*chartAreaHeight
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	if err := os.MkdirAll(chartsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}

	filename := filepath.Join(chartsDir, fmt.Sprintf("price_%s.png", symbol))
	if err := dc.SavePNG(filename); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return "", fmt.Errorf("failed to stat chart file: %w", err)
	}
	if fileInfo.Size() == 0 {
		os.Remove(filename)
		return "", fmt.Errorf("chart file is empty after rendering")
	}

	logging.LogInfo("Price chart generated",
		zap.String("filename", filename),
		zap.Int("points", len(points)),
		zap.Int64("fileSize", fileInfo.Size()))

	return filename, nil
}
