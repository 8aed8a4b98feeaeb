package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/radar/pkg/radar/types"
)

func TestComputeInferred(t *testing.T) {
	plain := []types.CoinSummary{{Symbol: "KUCOIN:BTCUSDT"}}
	cols, err := Compute(nil, plain)
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "price", "chg%", "bbw", "rsi", "volume"}, cols)

	rating := 2
	// only the second row is annotated; the column still appears
	mixed := []types.CoinSummary{{Symbol: "A"}, {Symbol: "B", Rating: &rating}}
	cols, err = Compute(nil, mixed)
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "price", "chg%", "bbw", "rsi", "volume", "rating"}, cols)

	sig := types.SignalBuy
	cols, err = Compute(nil, []types.CoinSummary{{Rating: &rating, Signal: &sig}})
	require.NoError(t, err)
	assert.Equal(t, "signal", cols[len(cols)-1])
}

func TestComputeExplicit(t *testing.T) {
	cols, err := Compute([]string{"Symbol", "signal", "change", "sym", "vol"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "signal", "chg%", "volume"}, cols)

	_, err = Compute([]string{"sym", "market_cap"}, nil)
	var uce *UnknownColumnError
	require.True(t, errors.As(err, &uce))
	assert.Equal(t, "market_cap", uce.Name)
}

func TestRenderValue(t *testing.T) {
	rating := 3
	sig := types.Signal("")
	c := types.CoinSummary{Symbol: "KUCOIN:BTCUSDT", Price: 50123.456, Change: 1.5, BBW: 0.0312, RSI: 55.54, Volume: 123456, Rating: &rating, Signal: &sig}
	assert.Equal(t, "KUCOIN:BTCUSDT", RenderValue("sym", c))
	assert.Equal(t, "50,123.46", RenderValue("price", c))
	assert.Equal(t, "+1.50%", RenderValue("chg%", c))
	assert.Equal(t, "0.0312", RenderValue("bbw", c))
	assert.Equal(t, "55.5", RenderValue("rsi", c))
	assert.Equal(t, "123.46K", RenderValue("volume", c))
	assert.Equal(t, "3", RenderValue("rating", c))
	assert.Equal(t, "NEUTRAL", RenderValue("signal", c))
	assert.Equal(t, "", RenderValue("nope", c))

	var plain types.CoinSummary
	assert.Equal(t, "", RenderValue("rating", plain))
	assert.Equal(t, "", RenderValue("signal", plain))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "-2.40%", FormatChange(-2.4))
	assert.Equal(t, "0.00%", FormatChange(0))
	assert.Equal(t, "1.50B", FormatLarge(1.5e9))
	assert.Equal(t, "2.30M", FormatLarge(2.3e6))
	assert.Equal(t, "999.00", FormatLarge(999))
	assert.Equal(t, "1,234,567.9", FormatFloat(1234567.89, 1))
	assert.Equal(t, "-1,000", FormatFloat(-1000, 0))
	assert.Equal(t, "0.4512", FormatPrice(0.45123))
	assert.Equal(t, "0.000012", FormatPrice(0.0000123))
	assert.Equal(t, "0.00", FormatPrice(0))
}

func TestExpandSets(t *testing.T) {
	cols, err := ExpandSets([]string{"signal", "basic", "signal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rating", "signal", "sym", "price", "chg%", "bbw", "rsi", "volume"}, cols)

	_, err = ExpandSets([]string{"fundamentals"})
	var use *UnknownSetError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, []string{"basic", "signal"}, use.Available)
}
