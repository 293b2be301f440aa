package lang

import (
	"math/rand/v2"

	"github.com/ardnew/calc/log"
)

// DefaultMaxDepth is the default limit on nested sub-expressions.
const DefaultMaxDepth = 1024

// Option configures parsing or evaluation behavior.
type Option func(*options)

type options struct {
	logger   log.Logger
	rand     *rand.Rand
	maxDepth int
	noCache  bool
}

// WithLogger sets the logger used to trace parsing and evaluation.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRand sets the source of randomness used by the random builtins.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rand = r }
}

// WithMaxDepth limits the nesting depth of parsed expressions.
// Non-positive values select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithCache controls whether a [Calculator] memoizes parse results.
func WithCache(enable bool) Option {
	return func(o *options) { o.noCache = !enable }
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	if o.maxDepth <= 0 {
		o.maxDepth = DefaultMaxDepth
	}

	return o
}
