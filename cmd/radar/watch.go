package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/komsit37/radar/pkg/radar/api"
	"github.com/komsit37/radar/pkg/radar/config"
	"github.com/komsit37/radar/pkg/radar/types"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		rating     int
		sets, cols []string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the trending list on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := trendingFilter("", rating)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watcher{
				interval: a.cfg.WatchInterval,
				log:      a.log,
				fetch: func(ctx context.Context) ([]types.CoinSummary, error) {
					return a.client.ListTrending(ctx, a.cfg.Timeframe, a.cfg.Exchange, f)
				},
				show: func(coins []types.CoinSummary) error {
					title := fmt.Sprintf("%s · %s", trendingTitle(rating), time.Now().Format("15:04:05"))
					return a.renderCoins(title, coins, sets, cols)
				},
			}
			return w.run(ctx)
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "only coins with this rating (1-5)")
	cmd.Flags().Duration("interval", 30*time.Second, "refresh interval")
	_ = a.v.BindPFlag(config.KeyWatchInterval, cmd.Flags().Lookup("interval"))
	addColumnFlags(cmd, &sets, &cols)
	return cmd
}

// watcher polls on a ticker. Each poll supersedes the previous one: the
// older request is cancelled and any result it still delivers is dropped
// by generation.
type watcher struct {
	interval time.Duration
	fetch    func(ctx context.Context) ([]types.CoinSummary, error)
	show     func(coins []types.CoinSummary) error
	log      *zap.Logger
}

type pollResult struct {
	gen   uint64
	coins []types.CoinSummary
	err   error
}

// run returns nil when ctx is done and the first show error otherwise.
func (w *watcher) run(ctx context.Context) error {
	var (
		gen      api.Generation
		inFlight bool
		cancel   context.CancelFunc = func() {}
	)
	defer func() { cancel() }()
	results := make(chan pollResult)

	poll := func() {
		if inFlight {
			w.log.Warn("poll superseded before it completed; consider a longer interval",
				zap.Uint64("generation", gen.Current()), zap.Duration("interval", w.interval))
		}
		cancel()
		var pctx context.Context
		pctx, cancel = context.WithCancel(ctx)
		g := gen.Next()
		inFlight = true
		go func() {
			coins, err := w.fetch(pctx)
			select {
			case results <- pollResult{gen: g, coins: coins, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		case r := <-results:
			if !gen.IsCurrent(r.gen) {
				w.log.Debug("discarding stale result", zap.Uint64("generation", r.gen), zap.Uint64("current", gen.Current()))
				continue
			}
			inFlight = false
			if r.err != nil {
				w.log.Warn("refresh failed", zap.Error(r.err))
				continue
			}
			if err := w.show(r.coins); err != nil {
				return err
			}
		}
	}
}
