package numbering

import (
	"testing"

	"pgregory.net/rapid"

	"paper_binder/rules"
)

// Positions that are neither overridden nor skipped count 1, 2, 3... in
// order; overrides never move that counter.
func TestAutoCounterProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "positions")
		skip := rules.SkipSet{}
		overrides := map[int]int{}
		for p := 1; p <= n; p++ {
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				skip[p] = struct{}{}
			case 1:
				overrides[p] = rapid.IntRange(0, 500).Draw(t, "override")
			}
		}

		e := New(overrides, skip)
		next := 1
		for p := 1; p <= n; p++ {
			label, ok := e.LabelFor(p)
			if v, overridden := overrides[p]; overridden {
				if !ok || label != v {
					t.Fatalf("position %d: got %d/%v, want override %d", p, label, ok, v)
				}
				continue
			}
			if skip.Contains(p) {
				if ok {
					t.Fatalf("position %d is skipped but labelled %d", p, label)
				}
				continue
			}
			if !ok || label != next {
				t.Fatalf("position %d: got %d/%v, want %d", p, label, ok, next)
			}
			next++
		}
		if e.Counter() != next-1 {
			t.Fatalf("counter = %d, want %d", e.Counter(), next-1)
		}
	})
}
