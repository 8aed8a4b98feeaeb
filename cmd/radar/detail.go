package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/komsit37/radar/pkg/radar/filter"
	"github.com/komsit37/radar/pkg/radar/pipeline"
	"github.com/komsit37/radar/pkg/radar/refquote"
	"github.com/komsit37/radar/pkg/radar/render"
	"github.com/komsit37/radar/pkg/radar/source"
)

const (
	refCacheTTL  = 5 * time.Minute
	refCacheSize = 256
)

func newSymbolsCmd(a *app) *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the symbols an exchange supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.Parse(expr)
			if err != nil {
				return err
			}
			symbols, err := a.client.ListSymbols(cmd.Context(), a.cfg.Exchange)
			if err != nil {
				return err
			}
			r, opts, err := a.renderer(nil)
			if err != nil {
				return err
			}
			return r.Symbols(a.out, render.SymbolsView{Exchange: a.cfg.Exchange, Symbols: filter.Apply(f, symbols)}, opts)
		},
	}
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "filter symbols: BTC,ETH | *USDT | /regex/ | substring")
	return cmd
}

func newDetailCmd(a *app) *cobra.Command {
	var withRef bool
	cmd := &cobra.Command{
		Use:   "detail SYMBOL",
		Short: "Show the full indicator detail for one coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.TrimSpace(args[0])
			d, err := a.client.GetDetail(cmd.Context(), symbol, a.cfg.Exchange, a.cfg.Timeframe)
			if err != nil {
				return err
			}
			v := render.DetailView{Detail: d, Exchange: a.cfg.Exchange, Timeframe: a.cfg.Timeframe}
			if withRef {
				a.attachRef(cmd.Context(), a.newRefs(a.cfg.RefTimeout), &v)
			}
			r, opts, err := a.renderer(nil)
			if err != nil {
				return err
			}
			return r.Detail(a.out, v, opts)
		},
	}
	cmd.Flags().BoolVar(&withRef, "ref", false, "add a Yahoo Finance reference quote")
	return cmd
}

// attachRef sets the reference quote, or the reason it is missing.
func (a *app) attachRef(ctx context.Context, refs refquote.Service, v *render.DetailView) {
	q, err := refs.Get(ctx, v.Detail.Symbol)
	if err != nil {
		a.log.Debug("reference quote unavailable", zap.String("symbol", v.Detail.Symbol), zap.Error(err))
		v.RefErr = err.Error()
		return
	}
	v.Ref = &q
}

func newWatchlistCmd(a *app) *cobra.Command {
	var (
		expr    string
		withRef bool
	)
	cmd := &cobra.Command{
		Use:   "watchlist FILE|DIR",
		Short: "Show the detail of every symbol in YAML watchlists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Parse(expr)
			if err != nil {
				return err
			}
			r, opts, err := a.renderer(nil)
			if err != nil {
				return err
			}
			runner := &pipeline.Runner{
				Source:   source.YAMLSource{},
				Details:  a.client,
				Renderer: r,
				Writer:   a.out,
				Log:      a.log,
			}
			if withRef {
				runner.Refs = refquote.NewCacheService(a.newRefs(a.cfg.RefTimeout), refCacheTTL, refCacheSize)
			}
			return runner.Execute(cmd.Context(), args[0], pipeline.ExecuteOptions{
				Symbols:     f,
				Exchange:    a.cfg.Exchange,
				Timeframe:   a.cfg.Timeframe,
				Color:       opts.Color,
				PrettyJSON:  opts.PrettyJSON,
				MaxColWidth: opts.MaxColWidth,
			})
		},
	}
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "filter symbols: BTC,ETH | *USDT | /regex/ | substring")
	cmd.Flags().BoolVar(&withRef, "ref", false, "add Yahoo Finance reference quotes")
	return cmd
}
