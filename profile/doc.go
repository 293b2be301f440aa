// Package profile runs an optional [github.com/pkg/profile] profiler around
// a command.
//
// A [Profiler] names one of the [Modes] and an output directory. Its
// [Profiler.Start] method begins collection and returns a [Stopper] that
// flushes the profile, named for the mode (cpu.pprof, mem.pprof, ...), into
// the directory:
//
//	stop, err := profile.Profiler{Mode: "cpu", Path: dir}.Start()
//	if err != nil {
//		return err
//	}
//	defer stop.Stop()
//
// An empty mode starts nothing, and its Stopper does nothing. Analyze the
// output with go tool pprof:
//
//	go tool pprof -http=: calc cpu.pprof
//
// Only one profiler may run at a time in a process.
package profile
