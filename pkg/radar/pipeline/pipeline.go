package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/komsit37/radar/pkg/radar/filter"
	"github.com/komsit37/radar/pkg/radar/refquote"
	"github.com/komsit37/radar/pkg/radar/render"
	"github.com/komsit37/radar/pkg/radar/source"
	"github.com/komsit37/radar/pkg/radar/types"
)

// DetailFetcher is the slice of the API client the pipeline needs.
type DetailFetcher interface {
	GetDetail(ctx context.Context, symbol string, ex types.Exchange, tf types.Timeframe) (types.CoinDetail, error)
}

// Runner renders watchlists with a detail row per symbol.
type Runner struct {
	Source   source.Source
	Details  DetailFetcher
	Refs     refquote.Service // optional
	Renderer render.Renderer
	Writer   io.Writer
	Log      *zap.Logger
}

type ExecuteOptions struct {
	Symbols filter.Filter
	// Exchange and Timeframe apply to lists that do not set their own.
	Exchange    types.Exchange
	Timeframe   types.Timeframe
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// Execute loads, fetches and renders. Symbols whose detail request fails
// are skipped; their errors are joined into the returned error after the
// remaining rows have been rendered.
func (r *Runner) Execute(ctx context.Context, location string, opts ExecuteOptions) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	lists, err := r.Source.Load(ctx, location)
	if err != nil {
		return err
	}

	var filt filter.Filter = filter.Always(true)
	if opts.Symbols != nil {
		filt = opts.Symbols
	}

	var failed []error
	out := make([]render.DetailList, 0, len(lists))
	for _, l := range lists {
		ex, tf := l.Exchange, l.Timeframe
		if ex == "" {
			ex = opts.Exchange
		}
		if tf == "" {
			tf = opts.Timeframe
		}

		dl := render.DetailList{Name: l.Name}
		for _, it := range l.Items {
			if !filt.Match(it.Sym) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := r.Details.GetDetail(ctx, it.Sym, ex, tf)
			if err != nil {
				log.Warn("skipping symbol", zap.String("list", l.Name), zap.String("symbol", it.Sym), zap.Error(err))
				failed = append(failed, fmt.Errorf("%s: %w", it.Sym, err))
				continue
			}
			v := render.DetailView{Detail: d, Exchange: ex, Timeframe: tf, Note: it.Note}
			if r.Refs != nil {
				if q, err := r.Refs.Get(ctx, it.Sym); err != nil {
					log.Debug("reference quote unavailable", zap.String("symbol", it.Sym), zap.Error(err))
					v.RefErr = err.Error()
				} else {
					v.Ref = &q
				}
			}
			dl.Items = append(dl.Items, v)
		}
		if len(dl.Items) > 0 {
			out = append(out, dl)
		}
	}

	if err := r.Renderer.Watchlists(r.Writer, out, render.RenderOptions{
		Color:       opts.Color,
		PrettyJSON:  opts.PrettyJSON,
		MaxColWidth: opts.MaxColWidth,
	}); err != nil {
		return err
	}
	return errors.Join(failed...)
}
