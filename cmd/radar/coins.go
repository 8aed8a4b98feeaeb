package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/komsit37/radar/pkg/radar/api"
	"github.com/komsit37/radar/pkg/radar/render"
	"github.com/komsit37/radar/pkg/radar/types"
)

func newTrendingCmd(a *app) *cobra.Command {
	var (
		rating     int
		filterType string
		sets, cols []string
	)
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List trending coins for a timeframe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := trendingFilter(filterType, rating)
			if err != nil {
				return err
			}
			coins, err := a.client.ListTrending(cmd.Context(), a.cfg.Timeframe, a.cfg.Exchange, f)
			if err != nil {
				return err
			}
			return a.renderCoins(trendingTitle(rating), coins, sets, cols)
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "only coins with this rating (1-5)")
	cmd.Flags().StringVar(&filterType, "filter-type", "", "raw filter_type parameter")
	addColumnFlags(cmd, &sets, &cols)
	return cmd
}

// trendingFilter maps --rating to the dashboard's rating tab filter; a bare
// --filter-type is passed through unchanged.
func trendingFilter(filterType string, rating int) (api.TrendingFilter, error) {
	if rating == 0 {
		return api.TrendingFilter{Type: strings.TrimSpace(filterType)}, nil
	}
	if rating < 1 || rating > maxRating {
		return api.TrendingFilter{}, &types.InvalidValueError{Field: "rating", Value: strconv.Itoa(rating), Allowed: fmt.Sprintf("1..%d", maxRating)}
	}
	return api.RatingFilter(strconv.Itoa(rating)), nil
}

const maxRating = 5

func trendingTitle(rating int) string {
	if rating > 0 {
		return fmt.Sprintf("trending · rating %d", rating)
	}
	return "trending"
}

func newScanCmd(a *app) *cobra.Command {
	var (
		bbw        string
		sets, cols []string
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan for coins whose Bollinger band width is below a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria := types.ScanCriteria{
				Hours:    a.cfg.Timeframe,
				BBW:      strings.TrimSpace(bbw),
				Exchange: a.cfg.Exchange,
			}
			if err := criteria.Validate(); err != nil {
				return err
			}
			coins, err := a.client.Scan(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return a.renderCoins(fmt.Sprintf("scan · bbw ≤ %s", criteria.BBW), coins, sets, cols)
		},
	}
	cmd.Flags().StringVar(&bbw, "bbw", types.DefaultBBW, fmt.Sprintf("maximum band width, %g to %g", types.MinBBW, types.MaxBBW))
	addColumnFlags(cmd, &sets, &cols)
	return cmd
}

func (a *app) renderCoins(title string, coins []types.CoinSummary, sets, cols []string) error {
	selected, err := coinColumns(sets, cols)
	if err != nil {
		return err
	}
	r, opts, err := a.renderer(selected)
	if err != nil {
		return err
	}
	return r.Coins(a.out, render.CoinsView{
		Title:     title,
		Timeframe: a.cfg.Timeframe,
		Exchange:  a.cfg.Exchange,
		Coins:     coins,
	}, opts)
}
