// Package api is the typed client for the BBW analytics service.
//
// The client performs one HTTP round trip per call. It does not retry,
// cache, or impose timeouts; deadlines come from the caller's context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/komsit37/radar/pkg/radar/types"
)

const (
	pathScan     = "/api/scan"
	pathTrending = "/api/trending"
	pathSymbols  = "/api/symbols"
	pathDetail   = "/api/coin-details"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the analytics service at a fixed base URL.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	http    Doer
	log     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The default is an http.Client
// without a timeout.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// TrendingFilter holds the optional trending parameters. Empty fields are
// not sent.
type TrendingFilter struct {
	Type   string
	Rating string
}

// RatingFilter is the filter the dashboard uses for its rating tabs.
func RatingFilter(rating string) TrendingFilter {
	if rating == "" {
		return TrendingFilter{}
	}
	return TrendingFilter{Type: "rating", Rating: rating}
}

type scanResponse struct {
	Status    string               `json:"status"`
	Timeframe string               `json:"timeframe"`
	Exchange  string               `json:"exchange"`
	Data      *[]types.CoinSummary `json:"data"`
}

func (r *scanResponse) present() bool { return r.Data != nil }

type trendingResponse struct {
	Status       string               `json:"status"`
	Timeframe    string               `json:"timeframe"`
	Exchange     string               `json:"exchange"`
	FilterType   string               `json:"filter_type,omitempty"`
	RatingFilter string               `json:"rating_filter,omitempty"`
	Data         *[]types.CoinSummary `json:"data"`
}

func (r *trendingResponse) present() bool { return r.Data != nil }

type symbolsResponse struct {
	Status   string    `json:"status"`
	Exchange string    `json:"exchange"`
	Symbols  *[]string `json:"symbols"`
}

func (r *symbolsResponse) present() bool { return r.Symbols != nil }

type detailResponse struct {
	Status string            `json:"status"`
	Data   *types.CoinDetail `json:"data"`
}

func (r *detailResponse) present() bool { return r.Data != nil }

// payload is implemented by success envelopes that must carry their
// payload key; a missing or null payload is a decode failure.
type payload interface {
	present() bool
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Scan posts the criteria verbatim and returns matching coins in service order.
func (c *Client) Scan(ctx context.Context, criteria types.ScanCriteria) ([]types.CoinSummary, error) {
	body, err := json.Marshal(criteria)
	if err != nil {
		return nil, c.fail("scan", pathScan, &RequestFailure{Message: fmt.Sprintf("encode scan request: %v", err), Err: err})
	}
	var out scanResponse
	if err := c.do(ctx, http.MethodPost, pathScan, body, &out); err != nil {
		return nil, c.fail("scan", pathScan, err)
	}
	return *out.Data, nil
}

// ListTrending returns trending coins. Rows carry rating/signal only when
// the service annotates them, typically when a filter is supplied.
func (c *Client) ListTrending(ctx context.Context, tf types.Timeframe, ex types.Exchange, f TrendingFilter) ([]types.CoinSummary, error) {
	q := query{}
	q.add("timeframe", string(tf))
	q.add("exchange", string(ex))
	q.addOptional("filter_type", f.Type)
	q.addOptional("rating", f.Rating)
	target := pathTrending + "?" + q.encode()

	var out trendingResponse
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, c.fail("trending", target, err)
	}
	return *out.Data, nil
}

// ListSymbols returns the exchange-qualified symbols known for ex.
func (c *Client) ListSymbols(ctx context.Context, ex types.Exchange) ([]string, error) {
	q := query{}
	q.add("exchange", string(ex))
	target := pathSymbols + "?" + q.encode()

	var out symbolsResponse
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, c.fail("symbols", target, err)
	}
	return *out.Symbols, nil
}

// GetDetail returns the indicator snapshot for one symbol.
func (c *Client) GetDetail(ctx context.Context, symbol string, ex types.Exchange, tf types.Timeframe) (types.CoinDetail, error) {
	q := query{}
	q.add("symbol", symbol)
	q.add("exchange", string(ex))
	q.add("timeframe", string(tf))
	target := pathDetail + "?" + q.encode()

	var out detailResponse
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return types.CoinDetail{}, c.fail("coin details", target, err)
	}
	return *out.Data, nil
}

// do performs one request and decodes a 2xx JSON body into out.
// Every error it returns is a *RequestFailure.
func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, rd)
	if err != nil {
		return &RequestFailure{Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestFailure{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestFailure{Message: fmt.Sprintf("read response: %v", err), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromBody(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &RequestFailure{Message: fmt.Sprintf("decode response: %v", err), StatusCode: resp.StatusCode, Err: err}
	}
	if p, ok := out.(payload); ok && !p.present() {
		return &RequestFailure{Message: "decode response: missing data", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) fail(op, target string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("url", c.baseURL+target), zap.Error(err)}
	var rf *RequestFailure
	if errors.As(err, &rf) && rf.StatusCode != 0 {
		fields = append(fields, zap.Int("status", rf.StatusCode))
	}
	c.log.Error("request failed", fields...)
	return err
}
