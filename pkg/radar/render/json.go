package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/radar/pkg/radar/refquote"
	"github.com/komsit37/radar/pkg/radar/types"
)

type jsonCoins struct {
	Title     string              `json:"title,omitempty"`
	Timeframe types.Timeframe     `json:"timeframe"`
	Exchange  types.Exchange      `json:"exchange"`
	Tally     jsonTally           `json:"tally"`
	Data      []types.CoinSummary `json:"data"`
}

type jsonTally struct {
	Total   int `json:"total"`
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
}

type jsonSymbols struct {
	Exchange types.Exchange `json:"exchange"`
	Symbols  []string       `json:"symbols"`
}

type jsonDetail struct {
	Exchange  types.Exchange   `json:"exchange"`
	Timeframe types.Timeframe  `json:"timeframe"`
	Note      string           `json:"note,omitempty"`
	Data      types.CoinDetail `json:"data"`
	Reference *refquote.Quote  `json:"reference,omitempty"`
	RefError  string           `json:"reference_error,omitempty"`
}

type jsonList struct {
	Name  string       `json:"name"`
	Items []jsonDetail `json:"items"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Coins(w io.Writer, v CoinsView, opts RenderOptions) error {
	t := types.TallyCoins(v.Coins)
	data := v.Coins
	if data == nil {
		data = []types.CoinSummary{}
	}
	return encode(w, jsonCoins{
		Title:     v.Title,
		Timeframe: v.Timeframe,
		Exchange:  v.Exchange,
		Tally:     jsonTally{Total: t.Total, Bullish: t.Bullish, Bearish: t.Bearish},
		Data:      data,
	}, opts)
}

func (r *JSONRenderer) Symbols(w io.Writer, v SymbolsView, opts RenderOptions) error {
	syms := v.Symbols
	if syms == nil {
		syms = []string{}
	}
	return encode(w, jsonSymbols{Exchange: v.Exchange, Symbols: syms}, opts)
}

func (r *JSONRenderer) Detail(w io.Writer, v DetailView, opts RenderOptions) error {
	return encode(w, toJSONDetail(v), opts)
}

func (r *JSONRenderer) Watchlists(w io.Writer, lists []DetailList, opts RenderOptions) error {
	out := make([]jsonList, 0, len(lists))
	for _, l := range lists {
		items := make([]jsonDetail, 0, len(l.Items))
		for _, it := range l.Items {
			items = append(items, toJSONDetail(it))
		}
		out = append(out, jsonList{Name: l.Name, Items: items})
	}
	return encode(w, out, opts)
}

func toJSONDetail(v DetailView) jsonDetail {
	return jsonDetail{
		Exchange:  v.Exchange,
		Timeframe: v.Timeframe,
		Note:      v.Note,
		Data:      v.Detail,
		Reference: v.Ref,
		RefError:  v.RefErr,
	}
}

func encode(w io.Writer, v any, opts RenderOptions) error {
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
