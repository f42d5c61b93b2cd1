package numbering

import (
	"testing"

	"paper_binder/rules"
)

type label struct {
	n  int
	ok bool
}

func run(e *Engine, positions int) []label {
	var out []label
	for p := 1; p <= positions; p++ {
		n, ok := e.LabelFor(p)
		out = append(out, label{n, ok})
	}
	return out
}

func TestAutoNumbering(t *testing.T) {
	got := run(New(nil, nil), 3)
	want := []label{{1, true}, {2, true}, {3, true}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestSkipDoesNotConsumeCounter(t *testing.T) {
	skip, err := rules.ParseSkipSet("2")
	if err != nil {
		t.Fatal(err)
	}
	got := run(New(nil, skip), 3)
	want := []label{{1, true}, {0, false}, {2, true}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i+1, got[i], want[i])
		}
	}
}

func TestOverridesWinOverSkip(t *testing.T) {
	overrides := rules.ParseNumberingOverrides("1-3:10")
	skip, _ := rules.ParseSkipSet("2,4")
	e := New(overrides, skip)

	got := run(e, 5)
	want := []label{{10, true}, {11, true}, {12, true}, {0, false}, {1, true}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i+1, got[i], want[i])
		}
	}
	if e.Counter() != 1 {
		t.Errorf("overrides must not advance the counter, got %d", e.Counter())
	}
}
