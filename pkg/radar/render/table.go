package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/radar/pkg/radar/columns"
	"github.com/komsit37/radar/pkg/radar/types"
)

const defaultMaxColWidth = 40

// maxRating is the top of the service's bb_rating scale.
const maxRating = 5

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Coins(w io.Writer, v CoinsView, opts RenderOptions) error {
	cols, err := columns.Compute(opts.Columns, v.Coins)
	if err != nil {
		return err
	}
	if strings.TrimSpace(v.Title) != "" {
		fmt.Fprintln(w, heading(v.Title, v.Exchange, v.Timeframe, opts))
	}
	if len(v.Coins) == 0 {
		_, err := fmt.Fprintln(w, "no coins found")
		return err
	}

	tw := newWriter(w, opts)
	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = strings.ToUpper(c)
	}
	tw.AppendHeader(hdr)

	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth(opts)}
		switch c {
		case "price", "chg%", "bbw", "rsi", "volume", "rating":
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, coin := range v.Coins {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			val := columns.RenderValue(c, coin)
			if opts.Color {
				switch c {
				case "price", "chg%":
					val = colorChange(coin.Change, val)
				case "signal":
					if s, ok := coin.SignalValue(); ok {
						val = colorSignal(s, val)
					}
				}
			}
			row[i] = val
		}
		tw.AppendRow(row)
	}
	tw.Render()

	t := types.TallyCoins(v.Coins)
	_, err = fmt.Fprintf(w, "%d coins · %d bullish · %d bearish\n", t.Total, t.Bullish, t.Bearish)
	return err
}

func (r *TableRenderer) Symbols(w io.Writer, v SymbolsView, opts RenderOptions) error {
	if len(v.Symbols) == 0 {
		_, err := fmt.Fprintln(w, "no symbols")
		return err
	}
	tw := newWriter(w, opts)
	tw.AppendHeader(table.Row{"#", "SYMBOL"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignRight}})
	for i, s := range v.Symbols {
		tw.AppendRow(table.Row{i + 1, s})
	}
	tw.Render()
	_, err := fmt.Fprintf(w, "%d symbols on %s\n", len(v.Symbols), v.Exchange)
	return err
}

// Detail prints a key/value card grouped into price, Bollinger, trend and
// signal sections, followed by a one-line reading of the signal.
func (r *TableRenderer) Detail(w io.Writer, v DetailView, opts RenderOptions) error {
	d := v.Detail
	fmt.Fprintln(w, heading(d.Symbol, v.Exchange, v.Timeframe, opts))

	tw := newWriter(w, opts)
	keyCfg := table.ColumnConfig{Number: 1}
	if opts.Color {
		keyCfg.Colors = text.Colors{text.Bold}
	}
	tw.SetColumnConfigs([]table.ColumnConfig{keyCfg, {Number: 2, WidthMax: maxWidth(opts)}})
	sig := d.Signal.Display()
	if opts.Color {
		sig = colorSignal(d.Signal, sig)
	}
	price := columns.FormatPrice(d.Price) + "  " + columns.FormatChange(d.Change)
	if opts.Color {
		price = colorChange(d.Change, price)
	}
	macd := fmt.Sprintf("%s / %s  %s", columns.FormatFloat(d.MACD, 1), columns.FormatFloat(d.MACDSignal, 1), macdLabel(d))

	tw.AppendRows([]table.Row{
		{"price", price},
		{"ohlc", fmt.Sprintf("O %s  H %s  L %s", columns.FormatPrice(d.Open), columns.FormatPrice(d.High), columns.FormatPrice(d.Low))},
		{"volume", columns.FormatLarge(d.Volume)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"bbw", columns.FormatFloat(d.BBWidth, 4)},
		{"bands", fmt.Sprintf("U %s  M %s  L %s", columns.FormatPrice(d.BBUpper), columns.FormatPrice(d.BBMiddle), columns.FormatPrice(d.BBLower))},
		{"rating", RatingBar(d.BBRating)},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"rsi", columns.FormatFloat(d.RSI, 1)},
		{"macd", macd},
		{"ema 50/200", columns.FormatPrice(d.EMA50) + " / " + columns.FormatPrice(d.EMA200)},
		{"adx", columns.FormatFloat(d.ADX, 1)},
	})
	if len(d.Oscillators) > 0 || len(d.MovingAverages) > 0 {
		tw.AppendSeparator()
		if len(d.Oscillators) > 0 {
			tw.AppendRow(table.Row{"oscillators", formatAux(d.Oscillators)})
		}
		if len(d.MovingAverages) > 0 {
			tw.AppendRow(table.Row{"moving avgs", formatAux(d.MovingAverages)})
		}
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"signal", sig})
	if v.Ref != nil {
		ref := fmt.Sprintf("%s %s %s", v.Ref.Symbol, v.Ref.Price, v.Ref.ChgFmt)
		tw.AppendRow(table.Row{"reference", strings.TrimSpace(ref)})
	} else if v.RefErr != "" {
		tw.AppendRow(table.Row{"reference", "unavailable: " + v.RefErr})
	}
	if v.Note != "" {
		tw.AppendRow(table.Row{"note", v.Note})
	}
	tw.Render()

	_, err := fmt.Fprintln(w, Narrative(d, v.Timeframe))
	return err
}

// Watchlists prints one compact table per list; detail columns are fixed.
func (r *TableRenderer) Watchlists(w io.Writer, lists []DetailList, opts RenderOptions) error {
	multi := len(lists) > 1
	for li, list := range lists {
		if multi && strings.TrimSpace(list.Name) != "" {
			fmt.Fprintln(w, heading(list.Name, "", "", opts))
		}

		tw := newWriter(w, opts)
		tw.AppendHeader(table.Row{"SYM", "TF", "PRICE", "CHG%", "BBW", "RSI", "RATING", "MACD", "SIGNAL", "NOTE"})
		cfgs := []table.ColumnConfig{{Number: 10, WidthMax: maxWidth(opts)}}
		for _, n := range []int{3, 4, 5, 6, 7} {
			cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
		}
		tw.SetColumnConfigs(cfgs)

		for _, it := range list.Items {
			d := it.Detail
			price := columns.FormatPrice(d.Price)
			chg := columns.FormatChange(d.Change)
			sig := d.Signal.Display()
			if opts.Color {
				price = colorChange(d.Change, price)
				chg = colorChange(d.Change, chg)
				sig = colorSignal(d.Signal, sig)
			}
			tw.AppendRow(table.Row{
				d.Symbol, string(it.Timeframe), price, chg,
				columns.FormatFloat(d.BBWidth, 4), columns.FormatFloat(d.RSI, 1),
				fmt.Sprintf("%d/%d", d.BBRating, maxRating), macdLabel(d), sig, it.Note,
			})
		}
		tw.Render()
		if li < len(lists)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// RatingBar draws a rating as filled dots out of five.
func RatingBar(rating int) string {
	n := rating
	if n < 0 {
		n = 0
	}
	if n > maxRating {
		n = maxRating
	}
	return strings.Repeat("●", n) + strings.Repeat("○", maxRating-n) + fmt.Sprintf(" %d/%d", rating, maxRating)
}

// Narrative summarizes the detail in one sentence keyed on the signal.
func Narrative(d types.CoinDetail, tf types.Timeframe) string {
	if tf == "" {
		tf = types.Timeframe(d.Timeframe)
	}
	bbw := columns.FormatFloat(d.BBWidth, 4)
	rsi := columns.FormatFloat(d.RSI, 1)
	switch d.Signal {
	case types.SignalBuy:
		return fmt.Sprintf("%s looks bullish on %s: Bollinger bands are compressed (BBW %s), hinting at a breakout, and RSI %s leaves room to rise.", d.Symbol, tf, bbw, rsi)
	case types.SignalSell:
		return fmt.Sprintf("%s looks bearish on %s: with BBW %s and RSI %s further downside is possible.", d.Symbol, tf, bbw, rsi)
	default:
		return fmt.Sprintf("%s is neutral on %s: with BBW %s and RSI %s the market is undecided.", d.Symbol, tf, bbw, rsi)
	}
}

func macdLabel(d types.CoinDetail) string {
	if d.MACDBullish() {
		return "bullish"
	}
	return "bearish"
}

// formatAux renders an open-schema indicator map as sorted key=value pairs.
func formatAux(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var val string
		switch t := m[k].(type) {
		case float64:
			val = columns.FormatFloat(t, 2)
		case nil:
			val = "-"
		default:
			val = fmt.Sprint(t)
		}
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, "  ")
}

func heading(title string, ex types.Exchange, tf types.Timeframe, opts RenderOptions) string {
	h := strings.ToUpper(title)
	var ctx []string
	if ex != "" {
		ctx = append(ctx, string(ex))
	}
	if tf != "" {
		ctx = append(ctx, string(tf))
	}
	if opts.Color {
		h = text.Bold.Sprint(h)
	}
	if len(ctx) > 0 {
		h += " (" + strings.Join(ctx, " · ") + ")"
	}
	return h
}

func newWriter(w io.Writer, opts RenderOptions) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func maxWidth(opts RenderOptions) int {
	if opts.MaxColWidth <= 0 {
		return defaultMaxColWidth
	}
	return opts.MaxColWidth
}

func colorChange(change float64, val string) string {
	switch {
	case change > 0:
		return text.Colors{text.FgGreen}.Sprint(val)
	case change < 0:
		return text.Colors{text.FgRed}.Sprint(val)
	}
	return val
}

func colorSignal(s types.Signal, val string) string {
	switch s {
	case types.SignalBuy:
		return text.Colors{text.FgGreen, text.Bold}.Sprint(val)
	case types.SignalSell:
		return text.Colors{text.FgRed, text.Bold}.Sprint(val)
	}
	return val
}
