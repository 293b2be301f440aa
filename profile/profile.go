package profile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// Tag names the profiling output subdirectory.
const Tag = `pprof`

// ErrUnknownMode is returned by [Profiler.Start] for a mode not in [Modes].
var ErrUnknownMode = errors.New("unknown profiling mode")

// Stopper ends a running profile and writes its output.
type Stopper interface{ Stop() }

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// Modes returns the sorted names of the supported profiling modes.
var Modes = sync.OnceValue(func() []string {
	return slices.Sorted(maps.Keys(mode))
})

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // One of [Modes], or empty to disable profiling
	Path  string // Output directory; empty selects the working directory
	Quiet bool   // Suppress the profiler's own log lines
}

// Option customizes a [Profiler].
type Option func(Profiler) Profiler

// WithMode sets the profiling mode.
func WithMode(m string) Option {
	return func(p Profiler) Profiler {
		p.Mode = m

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet controls the profiler's own log lines.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Make returns a Profiler configured by opts.
func Make(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// Start begins profiling. With an empty Mode it returns a Stopper that does
// nothing. Both Start and Stop are always safe to call.
func (p Profiler) Start() (Stopper, error) {
	if p.Mode == "" {
		return ignore{}, nil
	}

	fn, ok := mode[p.Mode]
	if !ok {
		return ignore{}, fmt.Errorf("%w: %q", ErrUnknownMode, p.Mode)
	}

	opts := []func(*profile.Profile){fn, profile.NoShutdownHook}

	if p.Path != "" {
		opts = append(opts, profile.ProfilePath(p.Path))
	}

	if p.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...), nil
}

type ignore struct{}

func (ignore) Stop() {}
