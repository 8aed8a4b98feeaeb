package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches an exchange-qualified symbol such as "KUCOIN:BTCUSDT".
type Filter interface {
	Match(symbol string) bool
}

// Parse builds a filter from an expression:
// - Comma-separated exact symbols: "BTCUSDT,KUCOIN:ETHUSDT"
// - Glob: "BTC*"
// - Regex: "/USDT$/"
// - Anything else: case-insensitive substring
//
// Exact and glob forms match either the full symbol or the part after the
// exchange prefix, so "BTC*" matches "KUCOIN:BTCUSDT".
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?[") {
		if _, err := filepath.Match(expr, ""); err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Glob{pattern: strings.ToUpper(expr)}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Apply returns the symbols matched by f, in input order.
func Apply(f Filter, symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Pair strips the exchange prefix: "KUCOIN:BTCUSDT" -> "BTCUSDT".
func Pair(symbol string) string {
	if i := strings.LastIndexByte(symbol, ':'); i >= 0 {
		return symbol[i+1:]
	}
	return symbol
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(symbol string) bool {
	s := strings.ToUpper(symbol)
	if _, ok := e.set[s]; ok {
		return true
	}
	_, ok := e.set[Pair(s)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(symbol string) bool {
	s := strings.ToUpper(symbol)
	if ok, _ := filepath.Match(g.pattern, s); ok {
		return true
	}
	ok, _ := filepath.Match(g.pattern, Pair(s))
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(symbol string) bool { return r.re.MatchString(symbol) }

// SubstrCI matches if symbol contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(symbol string) bool {
	return strings.Contains(strings.ToLower(symbol), strings.ToLower(s.needle))
}

func (g Glob) String() string     { return fmt.Sprintf("glob:%s", g.pattern) }
func (r Regex) String() string    { return fmt.Sprintf("regex:%s", r.re) }
func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
