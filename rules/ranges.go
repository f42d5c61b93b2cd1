// Package rules turns the range strings typed by an operator into lookup
// structures: ordered position lists, skip sets, numbering overrides and
// question-to-strip ratio mappings.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("invalid range rule")

// MaxPositions caps how many integers one rule string may expand to, both
// per range and in total.
const MaxPositions = 10000

// ParseError reports a token that is neither a bare integer nor a
// two-sided "start-end" range.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid token %q: %s", e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Range is an inclusive integer interval.
type Range struct {
	Start, End int
}

// Len returns the number of integers covered by the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// expand appends every integer of r to out. The loop stops on End so a
// range ending at math.MaxInt cannot wrap.
func (r Range) expand(out []int) []int {
	for i := r.Start; ; i++ {
		out = append(out, i)
		if i == r.End {
			return out
		}
	}
}

// ParseRange parses a single token: "7" or "3-9".
func ParseRange(token string) (Range, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Range{}, &ParseError{Token: token, Reason: "empty token"}
	}

	if !strings.Contains(token, "-") {
		n, err := strconv.Atoi(token)
		if err != nil {
			return Range{}, &ParseError{Token: token, Reason: "not an integer"}
		}
		return Range{Start: n, End: n}, nil
	}

	// Range like "1-5"
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return Range{}, &ParseError{Token: token, Reason: "range must have exactly one '-'"}
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid start %q", parts[0])}
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Range{}, &ParseError{Token: token, Reason: fmt.Sprintf("invalid end %q", parts[1])}
	}
	if start > end {
		return Range{}, &ParseError{Token: token, Reason: fmt.Sprintf("start > end (%d > %d)", start, end)}
	}
	if uint64(end)-uint64(start) >= MaxPositions {
		return Range{}, &ParseError{Token: token, Reason: fmt.Sprintf("range spans more than %d positions", MaxPositions)}
	}

	return Range{Start: start, End: end}, nil
}

// ParseRanges expands a comma separated list such as "1,3-5,7" into the
// integers it names, in declaration order. Duplicates are kept. Empty text
// and empty tokens ("1,,2") contribute nothing. Text naming more than
// MaxPositions integers is rejected.
func ParseRanges(text string) ([]int, error) {
	var out []int
	if strings.TrimSpace(text) == "" {
		return out, nil
	}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := ParseRange(part)
		if err != nil {
			return nil, err
		}
		if len(out)+r.Len() > MaxPositions {
			return nil, &ParseError{Token: part, Reason: fmt.Sprintf("rule names more than %d positions", MaxPositions)}
		}
		out = r.expand(out)
	}

	return out, nil
}

// SkipSet holds 1-based image positions excluded from automatic numbering.
type SkipSet map[int]struct{}

// Contains reports whether position is skipped.
func (s SkipSet) Contains(position int) bool {
	_, ok := s[position]
	return ok
}

// ParseSkipSet uses the same expansion as ParseRanges.
func ParseSkipSet(text string) (SkipSet, error) {
	positions, err := ParseRanges(text)
	if err != nil {
		return nil, err
	}
	set := make(SkipSet, len(positions))
	for _, p := range positions {
		set[p] = struct{}{}
	}
	return set, nil
}

// ParseNumberingOverrides parses "posOrRange:startNumber" tokens, e.g.
// "1-5:1, 6-10:41". Each position of a range receives startNumber plus its
// offset into the range. A token with a malformed start number or position
// part is dropped on its own; the remaining tokens still apply. Later
// tokens overwrite earlier ones for the same position. A token that would
// grow the result past MaxPositions entries is dropped too.
func ParseNumberingOverrides(text string) map[int]int {
	overrides := make(map[int]int)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, ":") {
			continue
		}

		positions, startText, _ := strings.Cut(part, ":")
		start, err := strconv.Atoi(strings.TrimSpace(startText))
		if err != nil {
			continue
		}
		r, err := ParseRange(positions)
		if err != nil || len(overrides)+r.Len() > MaxPositions {
			continue
		}
		for i, p := range r.expand(nil) {
			overrides[p] = start + i
		}
	}
	return overrides
}
