package render

import (
	"io"

	"github.com/komsit37/radar/pkg/radar/refquote"
	"github.com/komsit37/radar/pkg/radar/types"
)

// Renderer renders API results to an output writer.
type Renderer interface {
	Coins(w io.Writer, v CoinsView, opts RenderOptions) error
	Symbols(w io.Writer, v SymbolsView, opts RenderOptions) error
	Detail(w io.Writer, v DetailView, opts RenderOptions) error
	Watchlists(w io.Writer, lists []DetailList, opts RenderOptions) error
}

type RenderOptions struct {
	Columns     []string
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// CoinsView is a scan or trending result.
type CoinsView struct {
	Title     string
	Timeframe types.Timeframe
	Exchange  types.Exchange
	Coins     []types.CoinSummary
}

type SymbolsView struct {
	Exchange types.Exchange
	Symbols  []string
}

// DetailView is one coin detail with its request context.
type DetailView struct {
	Detail    types.CoinDetail
	Exchange  types.Exchange
	Timeframe types.Timeframe
	Note      string
	// Ref is the optional reference quote; RefErr explains a missing one.
	Ref    *refquote.Quote
	RefErr string
}

// DetailList is a rendered watchlist.
type DetailList struct {
	Name  string
	Items []DetailView
}

// New returns the renderer for an output format name.
func New(format string) (Renderer, bool) {
	switch format {
	case "table":
		return NewTableRenderer(), true
	case "json":
		return NewJSONRenderer(), true
	case "syms":
		return NewSymsRenderer(), true
	}
	return nil, false
}
