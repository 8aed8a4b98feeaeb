package render

import (
	"fmt"
	"io"
	"strings"
)

// symsRenderer prints all symbols in a single comma-separated line.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Coins(w io.Writer, v CoinsView, _ RenderOptions) error {
	symbols := make([]string, 0, len(v.Coins))
	for _, c := range v.Coins {
		symbols = append(symbols, c.Symbol)
	}
	return writeSyms(w, symbols)
}

func (symsRenderer) Symbols(w io.Writer, v SymbolsView, _ RenderOptions) error {
	return writeSyms(w, v.Symbols)
}

func (symsRenderer) Detail(w io.Writer, v DetailView, _ RenderOptions) error {
	return writeSyms(w, []string{v.Detail.Symbol})
}

func (symsRenderer) Watchlists(w io.Writer, lists []DetailList, _ RenderOptions) error {
	symbols := make([]string, 0)
	for _, list := range lists {
		for _, item := range list.Items {
			symbols = append(symbols, item.Detail.Symbol)
		}
	}
	return writeSyms(w, symbols)
}

func writeSyms(w io.Writer, symbols []string) error {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(out, ","))
	return err
}
