package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
	"github.com/ardnew/calc/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling." placeholder:"MODE"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode is selected. The returned function stops
// it and writes the profile.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	p := profile.Make(
		profile.WithMode(f.Mode),
		profile.WithPath(f.Dir),
		profile.WithQuiet(true),
	)

	s, err := p.Start()
	if err != nil {
		log.WarnContext(ctx, "profiling disabled", slog.Any("error", err))

		return s.Stop
	}

	if f.Mode != "" {
		log.DebugContext(ctx, "pprof start",
			slog.String("mode", f.Mode),
			slog.String("dir", f.Dir),
		)
	}

	return func() {
		s.Stop()

		if f.Mode != "" {
			log.DebugContext(ctx, "pprof stop",
				slog.String("mode", f.Mode),
				slog.String("dir", f.Dir),
			)
		}
	}
}
