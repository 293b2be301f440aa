package lang

import (
	"testing"
)

const benchInput = "$m0:max(2 ^ 3 ^ 2, 7 mod 3 add 1) * -(4 + 5)! / sin(pi / 4)"

func BenchmarkParse(b *testing.B) {
	for b.Loop() {
		if _, err := Parse(b.Context(), benchInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseCached(b *testing.B) {
	b.Cleanup(ClearCache)

	for b.Loop() {
		if _, err := ParseCached(b.Context(), benchInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	expr, err := Parse(b.Context(), benchInput)
	if err != nil {
		b.Fatal(err)
	}

	in := NewInterpreter()
	preview := EvaluateOptions{Preview: true}

	for b.Loop() {
		if _, _, err := in.EvaluateWithOptions(b.Context(), expr, preview); err != nil {
			b.Fatal(err)
		}
	}
}
