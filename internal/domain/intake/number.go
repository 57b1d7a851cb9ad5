package intake

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber reads a field value as a decimal number. Strings are trimmed
// and parsed; an empty string reads as zero. ok is false for values that
// are not numeric.
func ParseNumber(v any) (d decimal.Decimal, ok bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return bounded(n)
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), true
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		return fromString(n.String())
	case string:
		return fromString(n)
	}
	return decimal.Zero, false
}

// Field values are money, areas and counts. Anything with a larger
// exponent is treated as non-numeric so sums and comparisons stay cheap.
const maxNumberExponent = 64

// NumberOf reads a field value as a number, treating anything non-numeric
// as zero
func NumberOf(v any) decimal.Decimal {
	d, ok := ParseNumber(v)
	if !ok {
		return decimal.Zero
	}
	return d
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return bounded(decimal.NewFromFloat(f))
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return bounded(d)
}

// bounded rejects values whose magnitude or precision lies outside
// 10^±maxNumberExponent
func bounded(d decimal.Decimal) (decimal.Decimal, bool) {
	exp := int(d.Exponent())
	if exp < -maxNumberExponent || exp+d.NumDigits() > maxNumberExponent {
		return decimal.Zero, false
	}
	return d, true
}
