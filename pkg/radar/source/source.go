package source

import (
	"context"

	"github.com/komsit37/radar/pkg/radar/types"
)

// Source loads watchlists from a location such as a file or directory path.
type Source interface {
	Load(ctx context.Context, location string) ([]types.Watchlist, error)
}
