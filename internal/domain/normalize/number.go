package normalize

import (
	"encoding/json"
	"math"
)

// Number extracts a finite float from a decoded JSON value. Strings, booleans,
// NaN and infinities are rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// maxExact is the magnitude from which every float64 is an integer.
const maxExact = 1 << 53

// Round rounds v half away from zero to the given number of decimals. Values
// too large to carry a fraction at that precision are returned unchanged, so a
// finite input always yields a finite result.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	scaled := v * p
	if math.IsInf(scaled, 0) || math.Abs(scaled) >= maxExact {
		return v
	}
	return math.Round(scaled) / p
}
