package rules

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestParseRanges(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"empty", "", []int{}},
		{"blank", "   ", []int{}},
		{"single", "4", []int{4}},
		{"range then single", "2-4,9", []int{2, 3, 4, 9}},
		{"order preserved", "9,1-2", []int{9, 1, 2}},
		{"whitespace", " 1 - 3 , 5 ", []int{1, 2, 3, 5}},
		{"duplicates kept", "1,1-2", []int{1, 1, 2}},
		{"empty tokens", "1,,2,", []int{1, 2}},
		{"degenerate range", "5-5", []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRanges(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRanges(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseRangesErrors(t *testing.T) {
	for _, text := range []string{"a", "1-b", "5-2", "1-2-3", "-3", "1,x"} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseRanges(text)
			if err == nil {
				t.Fatalf("expected error for %q", text)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected error to wrap ErrParse")
			}
		})
	}
}

func TestParseRangesLimits(t *testing.T) {
	top := strconv.Itoa(math.MaxInt-1) + "-" + strconv.Itoa(math.MaxInt)
	got, err := ParseRanges(top)
	if err != nil {
		t.Fatalf("ParseRanges(%q): %v", top, err)
	}
	if !reflect.DeepEqual(got, []int{math.MaxInt - 1, math.MaxInt}) {
		t.Errorf("ParseRanges(%q) = %v", top, got)
	}

	tests := []struct {
		name string
		text string
	}{
		{"huge span", "1-2000000000"},
		{"span to max int", "0-" + strconv.Itoa(math.MaxInt)},
		{"one past the cap", "1-" + strconv.Itoa(MaxPositions+1)},
		{"too many in total", strings.Repeat("1-5000,", 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRanges(tt.text)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if _, err := ParseSkipSet(tt.text); !errors.Is(err, ErrParse) {
				t.Errorf("ParseSkipSet: expected ErrParse, got %v", err)
			}
		})
	}

	if got, err := ParseRanges("1-" + strconv.Itoa(MaxPositions)); err != nil || len(got) != MaxPositions {
		t.Errorf("range at the cap: %d positions, err %v", len(got), err)
	}
}

func TestParseSkipSet(t *testing.T) {
	set, err := ParseSkipSet("2,4-5,7")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []int{2, 4, 5, 7} {
		if !set.Contains(p) {
			t.Errorf("expected %d in skip set", p)
		}
	}
	if set.Contains(3) {
		t.Error("3 should not be skipped")
	}
	if _, err := ParseSkipSet("2,x"); err == nil {
		t.Error("expected malformed skip text to fail")
	}
}

func TestParseNumberingOverrides(t *testing.T) {
	got := ParseNumberingOverrides("1-3:10, 5:41")
	want := map[int]int{1: 10, 2: 11, 3: 12, 5: 41}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseNumberingOverridesDropsBadTokens(t *testing.T) {
	got := ParseNumberingOverrides("1-2:x, 4:7, 6-5:1, abc, 8:1:2, 9-10:3")
	want := map[int]int{4: 7, 9: 3, 10: 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseNumberingOverridesLimits(t *testing.T) {
	got := ParseNumberingOverrides("1-2000000000:1, " + strconv.Itoa(math.MaxInt) + ":7, 3:9")
	want := map[int]int{math.MaxInt: 7, 3: 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseNumberingOverridesLaterWins(t *testing.T) {
	got := ParseNumberingOverrides("1-3:1, 2:50")
	if got[2] != 50 || got[3] != 3 {
		t.Errorf("got %v", got)
	}
}

func TestBuildStripMapping(t *testing.T) {
	mapping, err := BuildStripMapping([]StripRule{
		{Questions: "1-3", Ratio: 0.2},
		{Questions: "", Ratio: 0.9},
		{Questions: "3,5", Ratio: 0.1},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := StripMapping{1: 0.2, 2: 0.2, 3: 0.1, 5: 0.1}
	if !reflect.DeepEqual(mapping, want) {
		t.Errorf("got %v, want %v", mapping, want)
	}
	if _, ok := mapping.Lookup(4); ok {
		t.Error("4 should not be mapped")
	}
}

func TestBuildStripMappingErrors(t *testing.T) {
	if _, err := BuildStripMapping([]StripRule{{Questions: "1-x", Ratio: 0.1}}); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if _, err := BuildStripMapping([]StripRule{{Questions: "1", Ratio: 1.5}}); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse for ratio, got %v", err)
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		text    string
		want    float64
		wantErr bool
	}{
		{"1/5", 0.2, false},
		{"1/20", 0.05, false},
		{" 0.12 ", 0.12, false},
		{"0", 0, false},
		{"1/0", 0, true},
		{"2/1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRatio(tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRatio(%q) err = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseRatio(%q) = %g, want %g", tt.text, got, tt.want)
		}
	}
}
