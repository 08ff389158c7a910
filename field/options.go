package field

import "go.uber.org/zap"

// DefaultFlushThreshold is the number of buffered documents an add-path
// auto-commits at, mirroring cairn.DefaultFlushThreshold.
const DefaultFlushThreshold = 10000

type config struct {
	flushThreshold int
	logger         *zap.Logger
}

func defaultConfig() config {
	return config{flushThreshold: DefaultFlushThreshold, logger: zap.NewNop()}
}

// Option configures a Writer or Reader, the same functional-options
// convention cairn.Option uses.
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
