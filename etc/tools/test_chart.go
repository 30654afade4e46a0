package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"jetpump-terminal/internal/features/tg_charts"
	"jetpump-terminal/internal/features/tokenview"
)

// go run etc/tools/test_chart.go
// in etc/charts/price_TEST.png
func main() {
	fmt.Println("Generating test chart...")

	now := time.Now()
	points := make([]tokenview.PricePoint, 0, 60)
	for i := 0; i < 60; i++ {
		price := 0.0000025 * (1 + 0.2*math.Sin(float64(i)/8))
		points = append(points, tokenview.PricePoint{
			Time:     now.Add(time.Duration(i-60) * 15 * time.Second),
			PriceSOL: price,
			PriceUSD: price * 150,
		})
	}

	chartPath, err := tg_charts.GeneratePriceChart("etc/charts", "TEST", points)
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s\n", chartPath)
	fmt.Println("Open the file to see the result!")
}
