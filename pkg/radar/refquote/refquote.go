// Package refquote fetches an independent reference quote for a coin from
// Yahoo Finance, shown next to the analytics service's own price.
package refquote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	yfgo "github.com/komsit37/yf-go"
)

// ErrUnmapped is returned for symbols with no Yahoo equivalent.
var ErrUnmapped = errors.New("no reference symbol")

// Quote contains formatted and raw values for rendering.
type Quote struct {
	Symbol   string  `json:"symbol"` // Yahoo symbol, e.g. BTC-USD
	Price    string  `json:"price"`
	PriceRaw float64 `json:"price_raw"`
	ChgFmt   string  `json:"change"`
	ChgRaw   float64 `json:"change_raw"`
	Name     string  `json:"name,omitempty"`
}

// Service fetches a reference quote for an exchange-qualified symbol.
type Service interface {
	Get(ctx context.Context, symbol string) (Quote, error)
}

// quoteSuffixes are stablecoin/fiat quote assets, longest first so
// "FDUSD" wins over "USD".
var quoteSuffixes = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "USD"}

// YahooSymbol maps "KUCOIN:BTCUSDT" to "BTC-USD". Only USD-quoted pairs map.
func YahooSymbol(symbol string) (string, bool) {
	pair := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndexByte(pair, ':'); i >= 0 {
		pair = pair[i+1:]
	}
	pair = strings.NewReplacer("-", "", "/", "", "_", "").Replace(pair)
	for _, q := range quoteSuffixes {
		if base := strings.TrimSuffix(pair, q); base != pair && base != "" {
			return base + "-USD", true
		}
	}
	return "", false
}

// YFService implements Service using yf-go.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, symbol string) (Quote, error) {
	ysym, ok := YahooSymbol(symbol)
	if !ok {
		return Quote{}, fmt.Errorf("%s: %w", symbol, ErrUnmapped)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, ysym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return Quote{}, fmt.Errorf("reference quote %s: %w", ysym, err)
	}
	if res.Price == nil {
		return Quote{}, fmt.Errorf("no price for %s", ysym)
	}

	q := Quote{Symbol: ysym}
	p := res.Price.RegularMarketPrice
	if p.Raw != nil {
		q.PriceRaw = *p.Raw
	}
	if p.Fmt != "" {
		q.Price = p.Fmt
	} else if p.Raw != nil {
		q.Price = fmt.Sprintf("%.2f", *p.Raw)
	}
	cp := res.Price.RegularMarketChangePercent
	if cp.Fmt != "" {
		q.ChgFmt = cp.Fmt
	}
	if cp.Raw != nil {
		q.ChgRaw = *cp.Raw
		if q.ChgFmt == "" {
			q.ChgFmt = fmt.Sprintf("%.2f%%", q.ChgRaw)
		}
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}

// CacheService decorates a Service with a TTL+LRU cache, so a watchlist
// naming the same coin on two exchanges asks Yahoo once.
type CacheService struct {
	next Service
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // oldest at index 0
}

type cacheEntry struct {
	at time.Time
	q  Quote
}

func NewCacheService(next Service, ttl time.Duration, size int) *CacheService {
	return &CacheService{next: next, ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry)}
}

// Get keys the cache by Yahoo symbol; unmapped symbols pass straight through.
func (c *CacheService) Get(ctx context.Context, symbol string) (Quote, error) {
	k, ok := YahooSymbol(symbol)
	if !ok {
		return c.next.Get(ctx, symbol)
	}
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[k]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(k)
			q := ent.q
			c.mu.Unlock()
			return q, nil
		}
		delete(c.items, k)
		c.removeFromOrderLocked(k)
	}
	c.mu.Unlock()

	q, err := c.next.Get(ctx, symbol)
	if err != nil {
		return q, err
	}
	c.mu.Lock()
	if _, ok := c.items[k]; ok {
		c.removeFromOrderLocked(k)
	}
	c.items[k] = cacheEntry{at: now, q: q}
	c.order = append(c.order, k)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return q, nil
}

func (c *CacheService) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *CacheService) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
