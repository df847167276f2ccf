package engine

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// SearchStats counts what one call to Search did.
type SearchStats struct {
	Nodes       uint64
	Leaves      uint64
	Terminals   uint64
	BetaCutoffs uint64
	Extensions  uint64
	MaxDepth    int
	CacheHits   uint64
	CacheMisses uint64
}

func (s SearchStats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("leaves", s.Leaves).
		Uint64("terminals", s.Terminals).
		Uint64("cutoffs", s.BetaCutoffs).
		Uint64("extensions", s.Extensions).
		Int("max_depth", s.MaxDepth).
		Uint64("cache_hits", s.CacheHits).
		Uint64("cache_misses", s.CacheMisses)
}

// Dump writes the counters as UCI info strings.
func (s SearchStats) Dump(w io.Writer) {
	fmt.Fprintln(w, "info string Search statistics:")
	fmt.Fprintf(w, "info string   Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "info string   Leaves: %d\n", s.Leaves)
	fmt.Fprintf(w, "info string   Terminals: %d\n", s.Terminals)
	fmt.Fprintf(w, "info string   Beta cutoffs: %d\n", s.BetaCutoffs)
	fmt.Fprintf(w, "info string   Capture extensions: %d\n", s.Extensions)
	fmt.Fprintf(w, "info string   Deepest ply: %d\n", s.MaxDepth)
	fmt.Fprintf(w, "info string   Cache hits: %d\n", s.CacheHits)
	fmt.Fprintf(w, "info string   Cache misses: %d\n", s.CacheMisses)
}
