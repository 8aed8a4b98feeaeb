package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/radar/pkg/radar/refquote"
)

type request struct {
	Path, Query, Body string
}

// analytics stands in for the analytics service with canned replies per path.
type analytics struct {
	mu       sync.Mutex
	requests []request
}

const (
	trendingBody = `{"status":"success","timeframe":"4h","exchange":"kucoin","data":[
		{"symbol":"KUCOIN:BTCUSDT","price":65000,"change":1.5,"bbw":0.0312,"rsi":55.54,"volume":1200000,"rating":3,"signal":"BUY"},
		{"symbol":"KUCOIN:ETHUSDT","price":3100,"change":-0.4,"bbw":0.05,"rsi":48,"volume":900000,"rating":2,"signal":"SELL"}]}`
	scanBody    = `{"status":"success","timeframe":"4h","exchange":"kucoin","data":[{"symbol":"KUCOIN:SOLUSDT","price":150,"change":2,"bbw":0.02,"rsi":60,"volume":5000}]}`
	symbolsBody = `{"status":"success","exchange":"kucoin","symbols":["KUCOIN:BTCUSDT","KUCOIN:ETHUSDT","KUCOIN:ETHBTC"]}`
)

func detailBody(symbol string) string {
	return `{"status":"success","data":{"symbol":"` + symbol + `","timeframe":"4h","price":65000,"open":64000,"high":66000,"low":63000,
		"volume":1000,"change":1.5,"bb_rating":4,"signal":"BUY","bbwidth":0.0312,"bb_upper":67000,"bb_middle":65000,"bb_lower":63000,
		"rsi":55.54,"ema_50":64000,"ema_200":60000,"macd":120,"macd_signal":80,"adx":25,"oscillators":{},"moving_averages":{}}}`
}

func newAnalytics(t *testing.T) (*analytics, *httptest.Server) {
	t.Helper()
	a := &analytics{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		a.mu.Lock()
		a.requests = append(a.requests, request{Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(b)})
		a.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/trending":
			_, _ = io.WriteString(w, trendingBody)
		case "/api/scan":
			_, _ = io.WriteString(w, scanBody)
		case "/api/symbols":
			_, _ = io.WriteString(w, symbolsBody)
		case "/api/coin-details":
			sym := r.URL.Query().Get("symbol")
			if sym == "KUCOIN:BADUSDT" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"status":"error","message":"symbol not found"}`)
				return
			}
			_, _ = io.WriteString(w, detailBody(sym))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return a, srv
}

func (a *analytics) all() []request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]request(nil), a.requests...)
}

// isolate keeps the developer's config file and environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"RADAR_BASE_URL", "RADAR_EXCHANGE", "RADAR_TIMEFRAME", "RADAR_OUTPUT", "RADAR_COLOR", "RADAR_LOG_LEVEL", "RADAR_WATCH_INTERVAL", "RADAR_REF_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	cmd := newRootCmd(a)
	cmd.SetArgs(append(args, "--color=false"))
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return a.out.(*bytes.Buffer).String(), err
}

func newTestApp() *app {
	a := newApp(&bytes.Buffer{})
	a.termWidth = func() int { return 0 }
	return a
}

func TestTrendingRatingJSON(t *testing.T) {
	svc, srv := newAnalytics(t)

	out, err := run(t, newTestApp(), "trending", "--base-url", srv.URL, "--rating", "3", "-o", "json")
	require.NoError(t, err)

	reqs := svc.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "timeframe=4h&exchange=kucoin&filter_type=rating&rating=3", reqs[0].Query)

	var got struct {
		Title string `json:"title"`
		Tally struct {
			Total, Bullish, Bearish int
		} `json:"tally"`
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "trending · rating 3", got.Title)
	assert.Equal(t, 2, got.Tally.Total)
	assert.Equal(t, 1, got.Tally.Bullish)
	assert.Equal(t, 1, got.Tally.Bearish)
	assert.Len(t, got.Data, 2)
}

func TestTrendingTableWithFlags(t *testing.T) {
	svc, srv := newAnalytics(t)

	out, err := run(t, newTestApp(), "trending", "--base-url", srv.URL, "-t", "1h", "-e", "BINANCE", "-c", "sym,signal")
	require.NoError(t, err)
	assert.Equal(t, "timeframe=1h&exchange=binance", svc.all()[0].Query)
	assert.Contains(t, out, "TRENDING (binance · 1h)")
	assert.Contains(t, out, "KUCOIN:BTCUSDT")
	assert.NotContains(t, out, "RSI")
	assert.Contains(t, out, "2 coins · 1 bullish · 1 bearish")
}

func TestTrendingRejectsRatingOutOfRange(t *testing.T) {
	svc, srv := newAnalytics(t)

	_, err := run(t, newTestApp(), "trending", "--base-url", srv.URL, "--rating", "7")
	require.Error(t, err)
	assert.Empty(t, svc.all())
}

func TestScanDefaults(t *testing.T) {
	svc, srv := newAnalytics(t)

	out, err := run(t, newTestApp(), "scan", "--base-url", srv.URL, "-o", "syms")
	require.NoError(t, err)
	assert.Equal(t, "KUCOIN:SOLUSDT\n", out)

	reqs := svc.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/scan", reqs[0].Path)
	assert.JSONEq(t, `{"hours":"4h","bbw":"0.04","exchange":"kucoin"}`, reqs[0].Body)
}

func TestScanValidatesBeforeRequest(t *testing.T) {
	svc, srv := newAnalytics(t)

	for _, bbw := range []string{"0.5", "NaN", "0x1p-4"} {
		_, err := run(t, newTestApp(), "scan", "--base-url", srv.URL, "--bbw", bbw)
		require.Error(t, err, bbw)
		assert.Contains(t, err.Error(), "bbw", bbw)
	}
	assert.Empty(t, svc.all())
}

func TestSymbolsFilter(t *testing.T) {
	svc, srv := newAnalytics(t)

	out, err := run(t, newTestApp(), "symbols", "--base-url", srv.URL, "-f", "*USDT", "-o", "syms")
	require.NoError(t, err)
	assert.Equal(t, "KUCOIN:BTCUSDT,KUCOIN:ETHUSDT\n", out)
	assert.Equal(t, "exchange=kucoin", svc.all()[0].Query)
}

type stubRefs struct{ calls int }

func (s *stubRefs) Get(_ context.Context, symbol string) (refquote.Quote, error) {
	s.calls++
	return refquote.Quote{Symbol: "BTC-USD", Price: "65,010.00", ChgFmt: "1.52%"}, nil
}

func TestDetailWithReference(t *testing.T) {
	svc, srv := newAnalytics(t)
	refs := &stubRefs{}
	a := newTestApp()
	a.newRefs = func(time.Duration) refquote.Service { return refs }

	out, err := run(t, a, "detail", "KUCOIN:BTCUSDT", "--base-url", srv.URL, "--ref")
	require.NoError(t, err)
	assert.Equal(t, "symbol=KUCOIN%3ABTCUSDT&exchange=kucoin&timeframe=4h", svc.all()[0].Query)
	assert.Equal(t, 1, refs.calls)
	assert.Contains(t, out, "KUCOIN:BTCUSDT (kucoin · 4h)")
	assert.Contains(t, out, "BTC-USD 65,010.00 1.52%")
	assert.Contains(t, out, "looks bullish on 4h")
}

func TestDetailSurfacesServiceMessage(t *testing.T) {
	_, srv := newAnalytics(t)

	_, err := run(t, newTestApp(), "detail", "KUCOIN:BADUSDT", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "symbol not found", err.Error())
}

func TestWatchlistSkipsFailedSymbols(t *testing.T) {
	svc, srv := newAnalytics(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "core.yaml")
	require.NoError(t, os.WriteFile(file, []byte("timeframe: 1h\nwatchlist:\n  - KUCOIN:BTCUSDT\n  - KUCOIN:BADUSDT\n  - KUCOIN:ETHBTC\n"), 0o644))

	out, err := run(t, newTestApp(), "watchlist", file, "--base-url", srv.URL, "-f", "/USDT$/", "-o", "syms")
	require.Error(t, err)
	assert.Equal(t, "KUCOIN:BADUSDT: symbol not found", err.Error())
	assert.Equal(t, "KUCOIN:BTCUSDT\n", out)

	reqs := svc.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "symbol=KUCOIN%3ABTCUSDT&exchange=kucoin&timeframe=1h", reqs[0].Query)
}

func TestConfigFile(t *testing.T) {
	_, srv := newAnalytics(t)
	file := filepath.Join(t.TempDir(), "radar.yaml")
	require.NoError(t, os.WriteFile(file, []byte("base_url: "+srv.URL+"\noutput: syms\nexchange: binance\n"), 0o644))

	out, err := run(t, newTestApp(), "trending", "--config", file)
	require.NoError(t, err)
	assert.Equal(t, "KUCOIN:BTCUSDT,KUCOIN:ETHUSDT\n", out)
}

func TestInvalidFlagValue(t *testing.T) {
	_, err := run(t, newTestApp(), "trending", "-t", "3h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3h")
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 0, columnWidth(0))
	assert.Equal(t, 12, columnWidth(40))
	assert.Equal(t, 50, columnWidth(200))
}

func TestTrendingFilter(t *testing.T) {
	f, err := trendingFilter("", 0)
	require.NoError(t, err)
	assert.Empty(t, f.Type)

	f, err = trendingFilter("volume", 0)
	require.NoError(t, err)
	assert.Equal(t, "volume", f.Type)

	f, err = trendingFilter("volume", 5)
	require.NoError(t, err)
	assert.Equal(t, "rating", f.Type)
	assert.Equal(t, "5", f.Rating)

	_, err = trendingFilter("", -1)
	assert.Error(t, err)
}
