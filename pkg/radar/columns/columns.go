package columns

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/komsit37/radar/pkg/radar/types"
)

// Resolver converts a coin row into a display value for one column.
type Resolver func(c types.CoinSummary) string

// Registry maps column keys to resolvers.
var Registry = map[string]Resolver{}

// aliases map accepted spellings to registry keys.
var aliases = map[string]string{
	"symbol":  "sym",
	"change":  "chg%",
	"chg":     "chg%",
	"vol":     "volume",
	"bbwidth": "bbw",
}

func init() {
	Registry["sym"] = func(c types.CoinSummary) string { return c.Symbol }
	Registry["price"] = func(c types.CoinSummary) string { return FormatPrice(c.Price) }
	Registry["chg%"] = func(c types.CoinSummary) string { return FormatChange(c.Change) }
	Registry["bbw"] = func(c types.CoinSummary) string { return FormatFloat(c.BBW, 4) }
	Registry["rsi"] = func(c types.CoinSummary) string { return FormatFloat(c.RSI, 1) }
	Registry["volume"] = func(c types.CoinSummary) string { return FormatLarge(c.Volume) }
	Registry["rating"] = func(c types.CoinSummary) string {
		if r, ok := c.RatingValue(); ok {
			return strconv.Itoa(r)
		}
		return ""
	}
	Registry["signal"] = func(c types.CoinSummary) string {
		if s, ok := c.SignalValue(); ok {
			return s.Display()
		}
		return ""
	}
}

// Canonical resolves a column name or alias to its registry key.
func Canonical(col string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(col))
	if a, ok := aliases[k]; ok {
		k = a
	}
	_, ok := Registry[k]
	return k, ok
}

// Compute determines the column order for a coin table. Explicit columns
// are honored in order (deduplicated, aliases resolved); otherwise the
// basic set is used and rating/signal are appended when any row carries
// them.
func Compute(explicit []string, coins []types.CoinSummary) ([]string, error) {
	if len(explicit) > 0 {
		seen := map[string]struct{}{}
		out := make([]string, 0, len(explicit))
		for _, col := range explicit {
			k, ok := Canonical(col)
			if !ok {
				return nil, &UnknownColumnError{Name: col}
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		return out, nil
	}

	keys := append([]string(nil), Sets["basic"]...)
	var hasRating, hasSignal bool
	for _, c := range coins {
		hasRating = hasRating || c.Rating != nil
		hasSignal = hasSignal || c.Signal != nil
	}
	if hasRating {
		keys = append(keys, "rating")
	}
	if hasSignal {
		keys = append(keys, "signal")
	}
	return keys, nil
}

// RenderValue calls the resolver for the given column.
func RenderValue(col string, c types.CoinSummary) string {
	if r, ok := Registry[col]; ok {
		return r(c)
	}
	return ""
}

// UnknownColumnError reports a column name with no resolver.
type UnknownColumnError struct{ Name string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %s; available: %s", e.Name, strings.Join(Available(), ", "))
}

// Available lists the registry keys in table order.
func Available() []string {
	return append(append([]string(nil), Sets["basic"]...), Sets["signal"]...)
}

// FormatPrice uses more decimals for sub-unit prices so small caps stay readable.
func FormatPrice(v float64) string {
	switch a := math.Abs(v); {
	case a == 0:
		return "0.00"
	case a < 0.01:
		return FormatFloat(v, 6)
	case a < 1:
		return FormatFloat(v, 4)
	default:
		return FormatFloat(v, 2)
	}
}

// FormatChange formats a percent change with an explicit sign.
func FormatChange(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if v > 0 {
		s = "+" + s
	}
	return s + "%"
}

// FormatLarge abbreviates volumes: 1.50B, 2.30M, 4.10K.
func FormatLarge(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	case a >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case a >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 2, 64) + "K"
	default:
		return FormatFloat(v, 2)
	}
}

// FormatFloat formats a float with a fixed number of decimals and comma separators.
func FormatFloat(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + fracPart
	}
	out := make([]byte, 0, n+n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, intPart[:rem]...)
	for i := rem; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, intPart[i:i+3]...)
	}
	return sign + string(out) + fracPart
}
