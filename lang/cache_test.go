package lang

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
)

func cacheLen() int {
	n := 0

	globalCache.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

func TestParseCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	a, err := ParseCached(t.Context(), "1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseCached error: %v", err)
	}

	b, err := ParseCached(t.Context(), "  1 + 2 * 3\n")
	if err != nil {
		t.Fatalf("ParseCached error: %v", err)
	}

	if a.String() != b.String() {
		t.Errorf("cached parse differs: %q and %q", a, b)
	}

	if n := cacheLen(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}

	_, err1 := ParseCached(t.Context(), "1 +")
	_, err2 := ParseCached(t.Context(), "1 +")

	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("cached failure = %v, then %v", err1, err2)
	}

	ClearCache()

	if n := cacheLen(); n != 0 {
		t.Errorf("cache entries after ClearCache = %d, want 0", n)
	}
}

func TestParseReader(t *testing.T) {
	t.Cleanup(ClearCache)

	expr, err := ParseReader(t.Context(), strings.NewReader("(5 + 6)\n* 3\n"))
	if err != nil {
		t.Fatalf("ParseReader error: %v", err)
	}

	if got := expr.String(); got != "[5 + 6] * 3" {
		t.Errorf("ParseReader = %q", got)
	}

	_, err = ParseReader(t.Context(), iotest.ErrReader(errors.New("boom")))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("ParseReader error = %v, want %v", err, ErrReadInput)
	}
}

func TestCalculator_WithoutCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	c := New(WithCache(false))
	mustEvaluate(t, c, "2 + 2")

	if n := cacheLen(); n != 0 {
		t.Errorf("cache entries = %d, want 0", n)
	}

	mustEvaluate(t, New(), "2 + 2")

	if n := cacheLen(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
}

func TestParseCached_DepthLimit(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const input = "((((1))))"

	if _, _, err := New(WithMaxDepth(3)).Evaluate(t.Context(), input); err == nil {
		t.Fatalf("Evaluate(%q) with depth 3 succeeded", input)
	}

	if got := mustEvaluate(t, New(), input); got != 1 {
		t.Errorf("Evaluate(%q) = %v, want 1", input, got)
	}

	if _, _, err := New(WithMaxDepth(3)).Evaluate(t.Context(), input); err == nil {
		t.Errorf("Evaluate(%q) with depth 3 succeeded after default parse", input)
	}

	if n := cacheLen(); n != 2 {
		t.Errorf("cache entries = %d, want 2", n)
	}
}

func TestParseCached_Bounded(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for i := range MaxCacheEntries + 1 {
		if _, err := ParseCached(t.Context(), strconv.Itoa(i)); err != nil {
			t.Fatalf("ParseCached(%d) error: %v", i, err)
		}
	}

	if n := cacheLen(); n > MaxCacheEntries {
		t.Errorf("cache entries = %d, want at most %d", n, MaxCacheEntries)
	}
}

func TestCalculator_PreviewNotCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	c := New()

	v, _, err := c.EvaluateWithOptions(t.Context(), "3 * 4", EvaluateOptions{Preview: true})
	if err != nil || v != 12 {
		t.Fatalf("preview = %v, %v", v, err)
	}

	if n := cacheLen(); n != 0 {
		t.Errorf("cache entries after preview = %d, want 0", n)
	}
}
