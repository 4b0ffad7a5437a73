package display

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/tempsense/tempsense/internal/settings"
)

// Sample is one temperature/humidity reading from the device.
type Sample struct {
	Temperature float64 `json:"temperature"` // degrees Celsius
	Humidity    float64 `json:"humidity"`    // percent
}

// Fahrenheit converts the sample temperature. Rounding is left to the caller.
func (s Sample) Fahrenheit() float64 {
	return celsius(s)*9/5 + 32
}

// FormatTop renders the top bar text for a display mode.
// Unknown modes and TopNone render as the empty string.
func FormatTop(s Sample, mode settings.TopMode) string {
	switch mode {
	case settings.TopTempBoth:
		return toFixed(celsius(s), 2) + " °C / " + toFixed(s.Fahrenheit(), 2) + " °F"
	case settings.TopTempC:
		return toFixed(celsius(s), 2) + " °C"
	case settings.TopTempF:
		return toFixed(s.Fahrenheit(), 2) + " °F"
	case settings.TopHumidity:
		return toFixed(humidity(s), 1) + "%"
	default:
		return ""
	}
}

// FormatMiddle renders the large middle value. Temperatures show only the
// integer part, truncated toward zero.
func FormatMiddle(s Sample, mode settings.MiddleMode) string {
	switch mode {
	case settings.MiddleTempC:
		return fmt.Sprintf("%d °C", int(math.Trunc(celsius(s))))
	case settings.MiddleTempF:
		return fmt.Sprintf("%d °F", int(math.Trunc(s.Fahrenheit())))
	case settings.MiddleHumidity:
		return toFixed(humidity(s), 1) + "%"
	default:
		return ""
	}
}

// Readings that are not finite numbers display as 0.
func celsius(s Sample) float64  { return finite(s.Temperature) }
func humidity(s Sample) float64 { return finite(s.Humidity) }

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// toFixed formats v with a fixed number of decimals, rounding the exact
// binary value half away from zero. fmt rounds ties to even, so 45.25
// would print as 45.2 where the device page shows 45.3.
func toFixed(v float64, places int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	// 2048 bits hold any float64 scaled by a small power of ten exactly.
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	x := new(big.Float).SetPrec(2048).SetFloat64(v)
	x.Mul(x, new(big.Float).SetPrec(2048).SetInt(scale))
	x.Add(x, big.NewFloat(0.5))
	n, _ := x.Int(nil)

	digits := n.String()
	if len(digits) <= places {
		digits = strings.Repeat("0", places-len(digits)+1) + digits
	}
	if places == 0 {
		return sign + digits
	}
	cut := len(digits) - places
	return sign + digits[:cut] + "." + digits[cut:]
}
