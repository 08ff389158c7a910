package query

import (
	"runtime"

	"go.uber.org/zap"
)

// Defaults per spec.md §4.11/§5.
const (
	DefaultContextLines       = 2
	DefaultMaxSnippetsPerFile = 10
)

type options struct {
	contextLines       int
	maxSnippetsPerFile int
	workers            int
	logger             *zap.Logger
}

// defaultWorkers is spec.md §5's "bounded worker pool, default
// min(CPU_count, 16)".
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 16 {
		n = 16
	}
	if n < 1 {
		n = 1
	}
	return n
}

func defaultOptions() options {
	return options{
		contextLines:       DefaultContextLines,
		maxSnippetsPerFile: DefaultMaxSnippetsPerFile,
		workers:            defaultWorkers(),
		logger:             zap.NewNop(),
	}
}

// Option configures a Search/SearchRegex call.
type Option func(*options)

// WithContextLines overrides the number of context lines shown above
// and below each matched line in a snippet.
func WithContextLines(n int) Option { return func(o *options) { o.contextLines = n } }

// WithMaxSnippetsPerFile caps how many snippet blocks a single file's
// result can carry.
func WithMaxSnippetsPerFile(n int) Option { return func(o *options) { o.maxSnippetsPerFile = n } }

// WithWorkers overrides the bounded verification worker pool size.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger injects a *zap.Logger, the same convention cairn.WithLogger
// uses. A nil logger is ignored, leaving the no-op default in place.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
