package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/komsit37/radar/pkg/radar/api"
	"github.com/komsit37/radar/pkg/radar/columns"
	"github.com/komsit37/radar/pkg/radar/config"
	"github.com/komsit37/radar/pkg/radar/logger"
	"github.com/komsit37/radar/pkg/radar/refquote"
	"github.com/komsit37/radar/pkg/radar/render"
	"github.com/komsit37/radar/pkg/radar/types"
)

func main() {
	if err := newRootCmd(newApp(os.Stdout)).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer

	cfg    config.Config
	log    *zap.Logger
	client *api.Client

	// newRefs builds the reference quote service; replaced in tests.
	newRefs func(timeout time.Duration) refquote.Service
	// termWidth reports the terminal width, 0 when unknown.
	termWidth func() int
}

func newApp(out io.Writer) *app {
	return &app{
		v:         config.New(),
		out:       out,
		newRefs:   func(timeout time.Duration) refquote.Service { return refquote.NewYFService(timeout) },
		termWidth: detectTerminalWidth,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "radar",
		Short:        "Bollinger band width scanner for crypto markets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(a.out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.radar.yaml)")
	pf.String("base-url", "", "analytics service base URL")
	pf.StringP("exchange", "e", "", "exchange: "+strings.Join(codes(types.Exchanges()), "|"))
	pf.StringP("timeframe", "t", "", "timeframe: "+strings.Join(codes(types.Timeframes()), "|"))
	pf.StringP("output", "o", "", "output format: table|json|syms")
	pf.Bool("color", true, "colorize table output")
	pf.String("log-level", "", "log level: debug|info|warn|error")

	for key, flag := range map[string]string{
		config.KeyBaseURL:   "base-url",
		config.KeyExchange:  "exchange",
		config.KeyTimeframe: "timeframe",
		config.KeyOutput:    "output",
		config.KeyColor:     "color",
		config.KeyLogLevel:  "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newTrendingCmd(a),
		newScanCmd(a),
		newSymbolsCmd(a),
		newDetailCmd(a),
		newWatchlistCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.client = api.NewClient(cfg.BaseURL, api.WithLogger(log))
	log.Debug("config resolved",
		zap.String("file", cfg.File),
		zap.String("base_url", cfg.BaseURL),
		zap.String("exchange", string(cfg.Exchange)),
		zap.String("timeframe", string(cfg.Timeframe)))
	return nil
}

// renderer returns the configured renderer and its options.
func (a *app) renderer(cols []string) (render.Renderer, render.RenderOptions, error) {
	r, ok := render.New(a.cfg.Output)
	if !ok {
		return nil, render.RenderOptions{}, &types.InvalidValueError{Field: config.KeyOutput, Value: a.cfg.Output, Allowed: "table, json, syms"}
	}
	return r, render.RenderOptions{
		Columns:     cols,
		Color:       a.cfg.Color,
		PrettyJSON:  true,
		MaxColWidth: columnWidth(a.termWidth()),
	}, nil
}

// columnWidth caps wide columns at a quarter of the terminal.
func columnWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return max(termWidth/4, 12)
}

// coinColumns expands --sets and appends --columns after them.
func coinColumns(sets, cols []string) ([]string, error) {
	expanded, err := columns.ExpandSets(sets)
	if err != nil {
		return nil, err
	}
	return append(expanded, cols...), nil
}

func addColumnFlags(cmd *cobra.Command, sets, cols *[]string) {
	cmd.Flags().StringSliceVar(sets, "sets", nil, "column sets: basic, signal")
	cmd.Flags().StringSliceVarP(cols, "columns", "c", nil, "columns: "+strings.Join(columns.Available(), ", "))
}

func codes[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
