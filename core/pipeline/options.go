package pipeline

import (
	"log/slog"
	"runtime"

	"github.com/siherrmann/timeliner/core/format"
)

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	formatter FormatFunc
	workers   int
	verify    bool
	logger    *slog.Logger
	metrics   *Metrics
}

func defaultConfig() config {
	return config{
		formatter: format.FormatExample,
		workers:   runtime.NumCPU(),
		verify:    true,
		logger:    slog.Default(),
	}
}

// WithWorkers sets the number of documents formatted concurrently (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithVerify toggles the offset check of every produced example (default: true).
func WithVerify(verify bool) Option {
	return func(c *config) {
		c.verify = verify
	}
}

// WithFormatter sets the format function (default: format.FormatExample).
func WithFormatter(f FormatFunc) Option {
	return func(c *config) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the counters updated during a run.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
