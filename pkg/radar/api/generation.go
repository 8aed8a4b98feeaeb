package api

import "sync/atomic"

// Generation numbers overlapping requests so a caller can drop responses
// that arrive after a newer request was issued. The zero value is ready.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new request and returns its generation.
func (g *Generation) Next() uint64 { return g.n.Add(1) }

// Current returns the newest generation handed out.
func (g *Generation) Current() uint64 { return g.n.Load() }

// IsCurrent reports whether gen is still the newest request.
func (g *Generation) IsCurrent(gen uint64) bool { return gen == g.n.Load() }
