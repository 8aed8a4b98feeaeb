package types

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Timeframe is a chart timeframe code understood by the analytics service.
type Timeframe string

const (
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1D  Timeframe = "1D"
)

// Timeframes lists the valid timeframe codes in display order.
func Timeframes() []Timeframe {
	return []Timeframe{Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1D}
}

// ParseTimeframe accepts a timeframe code. Matching is exact except that
// "1d" is accepted for "1D".
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.TrimSpace(s)
	if s == "1d" {
		s = "1D"
	}
	for _, tf := range Timeframes() {
		if string(tf) == s {
			return tf, nil
		}
	}
	return "", &InvalidValueError{Field: "timeframe", Value: s, Allowed: joinCodes(Timeframes())}
}

// Exchange is an exchange code understood by the analytics service.
type Exchange string

const (
	ExchangeKucoin  Exchange = "kucoin"
	ExchangeBinance Exchange = "binance"
)

func Exchanges() []Exchange {
	return []Exchange{ExchangeKucoin, ExchangeBinance}
}

// ParseExchange accepts an exchange code, case-insensitively.
func ParseExchange(s string) (Exchange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, ex := range Exchanges() {
		if string(ex) == s {
			return ex, nil
		}
	}
	return "", &InvalidValueError{Field: "exchange", Value: s, Allowed: joinCodes(Exchanges())}
}

// Signal is the server-computed trading recommendation.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// Display returns the signal for presentation; an empty signal reads NEUTRAL.
func (s Signal) Display() string {
	if strings.TrimSpace(string(s)) == "" {
		return string(SignalNeutral)
	}
	return string(s)
}

// Variant distinguishes the two shapes of CoinSummary the service returns.
type Variant int

const (
	// Plain summaries carry neither rating nor signal.
	Plain Variant = iota
	// Rated summaries carry a rating, a signal, or both.
	Rated
)

func (v Variant) String() string {
	if v == Rated {
		return "rated"
	}
	return "plain"
}

// CoinSummary is one row of a scan or trending result.
// Rating and Signal are optional independently of each other.
type CoinSummary struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	BBW    float64 `json:"bbw"`
	RSI    float64 `json:"rsi"`
	Volume float64 `json:"volume"`
	Rating *int    `json:"rating,omitempty"`
	Signal *Signal `json:"signal,omitempty"`
}

// Variant reports whether the record came back annotated.
func (c CoinSummary) Variant() Variant {
	if c.Rating != nil || c.Signal != nil {
		return Rated
	}
	return Plain
}

// RatingValue returns the rating and whether it is present.
func (c CoinSummary) RatingValue() (int, bool) {
	if c.Rating == nil {
		return 0, false
	}
	return *c.Rating, true
}

// SignalValue returns the signal and whether it is present.
func (c CoinSummary) SignalValue() (Signal, bool) {
	if c.Signal == nil {
		return "", false
	}
	return *c.Signal, true
}

// CoinDetail is the full indicator snapshot for one symbol.
type CoinDetail struct {
	Symbol     string  `json:"symbol"`
	Timeframe  string  `json:"timeframe"`
	Price      float64 `json:"price"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Volume     float64 `json:"volume"`
	Change     float64 `json:"change"`
	BBRating   int     `json:"bb_rating"`
	Signal     Signal  `json:"signal"`
	BBWidth    float64 `json:"bbwidth"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	RSI        float64 `json:"rsi"`
	EMA50      float64 `json:"ema_50"`
	EMA200     float64 `json:"ema_200"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	ADX        float64 `json:"adx"`
	// Keys of the auxiliary maps are not fixed by the service.
	Oscillators    map[string]any `json:"oscillators"`
	MovingAverages map[string]any `json:"moving_averages"`
}

// Summary projects the detail onto a rated CoinSummary. An empty signal
// stays absent.
func (d CoinDetail) Summary() CoinSummary {
	rating := d.BBRating
	s := CoinSummary{
		Symbol: d.Symbol,
		Price:  d.Price,
		Change: d.Change,
		BBW:    d.BBWidth,
		RSI:    d.RSI,
		Volume: d.Volume,
		Rating: &rating,
	}
	if d.Signal != "" {
		signal := d.Signal
		s.Signal = &signal
	}
	return s
}

// MACDBullish reports whether the MACD line is above its signal line.
func (d CoinDetail) MACDBullish() bool { return d.MACD > d.MACDSignal }

// BBW threshold bounds accepted by the scanner.
const (
	MinBBW = 0.01
	MaxBBW = 0.2
	// DefaultBBW is the scanner's initial threshold.
	DefaultBBW = "0.04"
)

// decimalRe accepts plain decimals only: no sign, exponent, hex or NaN.
var decimalRe = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ScanCriteria is the body of a scan request. Values are sent verbatim.
type ScanCriteria struct {
	Hours    Timeframe `json:"hours"`
	BBW      string    `json:"bbw"`
	Exchange Exchange  `json:"exchange"`
}

// Validate checks the criteria against the service's accepted ranges.
// The API client does not call it; callers supplying user input should.
func (c ScanCriteria) Validate() error {
	if !contains(Timeframes(), c.Hours) {
		return &InvalidValueError{Field: "hours", Value: string(c.Hours), Allowed: joinCodes(Timeframes())}
	}
	if !contains(Exchanges(), c.Exchange) {
		return &InvalidValueError{Field: "exchange", Value: string(c.Exchange), Allowed: joinCodes(Exchanges())}
	}
	bbw := strings.TrimSpace(c.BBW)
	if !decimalRe.MatchString(bbw) {
		return &InvalidValueError{Field: "bbw", Value: c.BBW, Allowed: fmt.Sprintf("decimal in [%g, %g]", MinBBW, MaxBBW)}
	}
	v, err := strconv.ParseFloat(bbw, 64)
	if err != nil || math.IsNaN(v) || v < MinBBW || v > MaxBBW {
		return &InvalidValueError{Field: "bbw", Value: c.BBW, Allowed: fmt.Sprintf("decimal in [%g, %g]", MinBBW, MaxBBW)}
	}
	return nil
}

// Tally counts rows and BUY/SELL signals, as shown on the dashboard cards.
type Tally struct {
	Total   int
	Bullish int
	Bearish int
}

func TallyCoins(coins []CoinSummary) Tally {
	t := Tally{Total: len(coins)}
	for _, c := range coins {
		s, ok := c.SignalValue()
		if !ok {
			continue
		}
		switch s {
		case SignalBuy:
			t.Bullish++
		case SignalSell:
			t.Bearish++
		}
	}
	return t
}

// InvalidValueError reports a value outside an enumerated or ranged domain.
type InvalidValueError struct {
	Field   string
	Value   string
	Allowed string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q; allowed: %s", e.Field, e.Value, e.Allowed)
}

func contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func joinCodes[T ~string](codes []T) string {
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ", ")
}
