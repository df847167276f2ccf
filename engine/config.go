package engine

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the nominal search depth in plies.
const DefaultMaxDepth = 3

// DefaultMaxExtension caps how many plies recaptures may run past MaxDepth.
const DefaultMaxExtension = 8

// UnlimitedExtension disables the extension cap.
const UnlimitedExtension = -1

// Config configures an Engine.
type Config struct {
	// MaxDepth is the depth at which quiet positions become leaves.
	MaxDepth int

	// CaptureExtension lets pending recaptures search past MaxDepth.
	CaptureExtension bool
	// MaxExtension is the number of extra plies allowed by CaptureExtension.
	// UnlimitedExtension removes the cap.
	MaxExtension int

	// Randomize shuffles equally scored root moves.
	Randomize bool
	// Seed seeds the shuffle. Zero picks a time based seed.
	Seed int64

	// Logger receives search summaries at debug level. Nil means no logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns the settings used when nothing else is asked for.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         DefaultMaxDepth,
		CaptureExtension: true,
		MaxExtension:     DefaultMaxExtension,
		Randomize:        true,
	}
}

// Validate reports whether c can drive a search.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxExtension < UnlimitedExtension {
		return errors.Wrapf(ErrInvalidConfig, "max extension must be >= %d, got %d", UnlimitedExtension, c.MaxExtension)
	}
	return nil
}

func (c Config) seed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func (c Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}

// mayExtend reports whether a node at depth may still be extended.
func (c Config) mayExtend(depth int) bool {
	if !c.CaptureExtension {
		return false
	}
	return c.MaxExtension == UnlimitedExtension || depth < c.MaxDepth+c.MaxExtension
}
