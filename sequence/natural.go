// Package sequence orders uploaded file names the way a person would:
// "img2" before "img10", letters compared without regard to case.
package sequence

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is the precomputed comparison key of one name. Runs alternate
// text, number, text, ... starting with a (possibly empty) text run, so
// runs at the same index always have the same kind.
type Key struct {
	runs []string
}

// NewKey splits name into alternating non-digit and digit runs. Text runs
// are lowercased; digit runs lose their leading zeros.
func NewKey(name string) Key {
	return newKey(cases.Lower(language.Und), name)
}

func newKey(lower cases.Caser, name string) Key {
	var runs []string
	var cur strings.Builder
	digits := false

	flush := func() {
		s := cur.String()
		if digits {
			s = strings.TrimLeft(s, "0")
		} else {
			s = lower.String(s)
		}
		runs = append(runs, s)
		cur.Reset()
	}

	for _, r := range name {
		isDigit := r >= '0' && r <= '9'
		if isDigit != digits {
			flush()
			digits = isDigit
		}
		cur.WriteRune(r)
	}
	flush()

	return Key{runs: runs}
}

// Compare returns -1, 0 or +1. Digit runs compare by numeric value of any
// length; text runs compare lexically.
func (k Key) Compare(other Key) int {
	n := min(len(k.runs), len(other.runs))
	for i := 0; i < n; i++ {
		a, b := k.runs[i], other.runs[i]
		var c int
		if i%2 == 1 {
			c = compareDigits(a, b)
		} else {
			c = strings.Compare(a, b)
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(k.runs) < len(other.runs):
		return -1
	case len(k.runs) > len(other.runs):
		return 1
	}
	return 0
}

// compareDigits compares two zero-stripped digit strings numerically.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return NewKey(a).Compare(NewKey(b)) < 0
}

// Sort orders names naturally in place. Ties keep their input order.
func Sort(names []string) {
	SortFunc(names, func(s string) string { return s })
}

// SortFunc stably orders items by the natural order of name(item).
func SortFunc[T any](items []T, name func(T) string) {
	lower := cases.Lower(language.Und)
	type keyed struct {
		key  Key
		item T
	}
	tmp := make([]keyed, len(items))
	for i, it := range items {
		tmp[i] = keyed{key: newKey(lower, name(it)), item: it}
	}
	slices.SortStableFunc(tmp, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})
	for i := range tmp {
		items[i] = tmp[i].item
	}
}
