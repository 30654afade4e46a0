package format

// Presentation formatters shared by every screen. All of them are pure
// derivations of their inputs.

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var capTiers = []struct {
	value  float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// MarketCap renders a magnitude with a K/M/B/T suffix. decimals controls the
// fraction digits of the scaled value; values under a thousand render with no
// fraction at all.
func MarketCap(marketCap float64, decimals int) string {
	if marketCap == 0 {
		return "0"
	}

	for _, tier := range capTiers {
		if marketCap >= tier.value {
			return strconv.FormatFloat(marketCap/tier.value, 'f', decimals, 64) + tier.suffix
		}
	}

	return strconv.FormatFloat(marketCap, 'f', 0, 64)
}

// timeLayouts are the timestamp shapes the backend is known to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeElapsed renders the age of a timestamp in the largest whole unit
// (d/h/m/s). An empty or unparseable timestamp renders as "".
func TimeElapsed(dateString string) string {
	if dateString == "" {
		return ""
	}

	var created time.Time
	parsed := false
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, dateString); err == nil {
			created = t
			parsed = true
			break
		}
	}
	if !parsed {
		return ""
	}

	seconds := int64(time.Since(created).Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd", days)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// TokenPrice renders a token price. Ordinary magnitudes get a fixed number
// of decimals; dust prices fall back to a compact scientific form so the
// significant digits stay visible ("1.23e-7" instead of "0.00000012").
func TokenPrice(price float64) string {
	if price == 0 {
		return "0"
	}
	if price < 0 {
		return "-" + TokenPrice(-price)
	}
	if price >= 0.001 {
		return trimZeros(strconv.FormatFloat(price, 'f', 8, 64))
	}

	exp := int(math.Floor(math.Log10(price)))
	mantissa := price / math.Pow10(exp)
	return trimZeros(strconv.FormatFloat(mantissa, 'f', 2, 64)) + "e" + strconv.Itoa(exp)
}

func trimZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

// Amount renders a SOL amount with up to four decimals, trimming trailing
// zeros.
func Amount(v float64) string {
	return trimZeros(strconv.FormatFloat(v, 'f', 4, 64))
}

// ShortAddress slices an address to "abc...xyz" for inline display.
func ShortAddress(address string, slice int) string {
	if slice <= 0 {
		slice = 3
	}
	if len(address) <= slice*2 {
		return address
	}
	return address[:slice] + "..." + address[len(address)-slice:]
}
