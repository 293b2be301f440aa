package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// MaxCacheEntries bounds the number of memoized parse results. The cache is
// emptied when a new entry would exceed it.
const MaxCacheEntries = 4096

// globalCache stores parse results keyed by the hash of the trimmed source
// combined with the options that affect parsing.
var (
	globalCache sync.Map
	cacheSize   atomic.Int64
)

// entry is a memoized parse result. Trees are immutable once built, so a
// cached Expr may be shared by any number of callers.
type entry struct {
	once     sync.Once
	source   string
	maxDepth int
	expr     Expr
	err      error
}

// hashOptions hashes the options that change the outcome of a parse.
func hashOptions(o options) uint64 {
	return xxh3.HashString("depth=" + strconv.Itoa(o.maxDepth))
}

// ParseCached is like [Parse] but memoizes the result for each distinct
// trimmed source and depth limit.
func ParseCached(ctx context.Context, s string, opts ...Option) (Expr, error) {
	o := makeOptions(opts...)
	source := strings.TrimSpace(s)
	hash := xxh3.HashString(source) ^ hashOptions(o)

	value, hit := globalCache.LoadOrStore(hash,
		&entry{source: source, maxDepth: o.maxDepth})
	if !hit && cacheSize.Add(1) > MaxCacheEntries {
		ClearCache()
	}

	e, ok := value.(*entry)
	if !ok || e.source != source || e.maxDepth != o.maxDepth {
		// Hash collision or foreign value: parse without caching.
		return Parse(ctx, source, opts...)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		e.expr, e.err = Parse(ctx, source, opts...)
	})

	return e.expr, e.err
}

// ParseReader reads all of r and parses it as one expression.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (Expr, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return Expr{}, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseCached(ctx, string(data), opts...)
}

// ClearCache removes all memoized parse results.
func ClearCache() {
	globalCache.Clear()
	cacheSize.Store(0)
}
