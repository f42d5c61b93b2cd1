package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// StripRule assigns one redaction ratio to a set of question numbers.
type StripRule struct {
	Questions string  // range text, e.g. "1-4,9"
	Ratio     float64 // fraction of the image width to blank, in [0,1]
}

// StripMapping maps a question number to its crop ratio.
type StripMapping map[int]float64

// Lookup returns the ratio mapped to question, if any.
func (m StripMapping) Lookup(question int) (float64, bool) {
	r, ok := m[question]
	return r, ok
}

// BuildStripMapping applies rules in declaration order. When two rules name
// the same question the later one wins.
func BuildStripMapping(rules []StripRule) (StripMapping, error) {
	mapping := make(StripMapping)
	for i, rule := range rules {
		if strings.TrimSpace(rule.Questions) == "" {
			continue
		}
		if rule.Ratio < 0 || rule.Ratio > 1 {
			return nil, fmt.Errorf("strip rule %d: ratio %g outside [0,1]: %w", i+1, rule.Ratio, ErrParse)
		}
		questions, err := ParseRanges(rule.Questions)
		if err != nil {
			return nil, fmt.Errorf("strip rule %d: %w", i+1, err)
		}
		for _, q := range questions {
			mapping[q] = rule.Ratio
		}
	}
	return mapping, nil
}

// ParseRatio accepts either a fraction "1/N" or a decimal such as "0.12".
func ParseRatio(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, &ParseError{Token: text, Reason: "empty ratio"}
	}

	if num, den, ok := strings.Cut(text, "/"); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, &ParseError{Token: text, Reason: "invalid numerator"}
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d <= 0 {
			return 0, &ParseError{Token: text, Reason: "invalid denominator"}
		}
		return checkRatio(text, n/d)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{Token: text, Reason: "not a number"}
	}
	return checkRatio(text, v)
}

func checkRatio(token string, v float64) (float64, error) {
	if v < 0 || v > 1 {
		return 0, &ParseError{Token: token, Reason: "ratio outside [0,1]"}
	}
	return v, nil
}
