package cairn

import "go.uber.org/zap"

// DefaultFlushThreshold is the number of buffered documents an add-path
// auto-commits at, spec.md §4.8.
const DefaultFlushThreshold = 10000

type config struct {
	flushThreshold int
	logger         *zap.Logger
	positional     bool
}

func defaultConfig() config {
	return config{flushThreshold: DefaultFlushThreshold, logger: zap.NewNop()}
}

// Option configures a Writer or Reader, functional-options style
// (heroiclabs-nakama's config plumbing uses the same convention
// throughout its runtime construction) — the core takes configuration
// as explicit constructor arguments rather than a config file format,
// since file-format parsing belongs to the out-of-scope CLI front end.
type Option func(*config)

// WithFlushThreshold overrides the writer's auto-commit threshold.
func WithFlushThreshold(n int) Option {
	return func(c *config) { c.flushThreshold = n }
}

// WithLogger injects a *zap.Logger. A nil logger is ignored, leaving the
// no-op default in place.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPositional enables v2 (positional) segment writing, required for
// proximity queries (spec.md §4.13) and the rune-offset sampler.
func WithPositional(enabled bool) Option {
	return func(c *config) { c.positional = enabled }
}
