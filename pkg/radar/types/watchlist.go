package types

// Watchlist is a named group of symbols with optional market overrides.
// Empty Exchange or Timeframe means "use the caller's default".
type Watchlist struct {
	Name      string
	Exchange  Exchange
	Timeframe Timeframe
	Items     []Item
}

// Item is a symbol entry; Note is free text carried through to output.
type Item struct {
	Sym  string
	Note string
}
