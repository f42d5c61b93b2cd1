// Package layout computes where scanned images land on fixed-size pages.
//
// The engine is pure geometry: it never touches pixels. Given the scaled
// size of each image it decides page breaks, splits tall images across
// pages with a carried-over overlap, and returns the placement of every
// fragment. Rendering is done elsewhere from the returned plan.
package layout

import (
	"fmt"
	"strings"
)

// A4 at 300 DPI, in pixels.
const (
	A4Width  = 2481
	A4Height = 3507
)

// Alignment selects the horizontal placement of images on the page.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment accepts "left", "center" or "right" in any case. An empty
// string yields AlignLeft.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// UnmarshalText lets alignment be read from YAML configuration.
func (a *Alignment) UnmarshalText(text []byte) error {
	v, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SkipPolicy says what happens to an image whose position is in the skip set.
type SkipPolicy int

const (
	// ExcludeFromLayout drops skipped images from the document.
	ExcludeFromLayout SkipPolicy = iota
	// ExcludeFromNumberingOnly places skipped images without a label.
	ExcludeFromNumberingOnly
)

func (p SkipPolicy) String() string {
	if p == ExcludeFromNumberingOnly {
		return "exclude_from_numbering_only"
	}
	return "exclude_from_layout"
}

// ParseSkipPolicy accepts the String forms, with "-" or "_" separators.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "exclude_from_layout", "layout":
		return ExcludeFromLayout, nil
	case "exclude_from_numbering_only", "numbering_only", "numbering":
		return ExcludeFromNumberingOnly, nil
	}
	return ExcludeFromLayout, fmt.Errorf("unknown skip policy %q", s)
}

// UnmarshalText lets the policy be read from YAML configuration.
func (p *SkipPolicy) UnmarshalText(text []byte) error {
	v, err := ParseSkipPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Config holds the page geometry. It is passed by value and never mutated
// by the engine.
type Config struct {
	PageWidth      int
	PageHeight     int
	TopMarginFirst int // first page, before the header block
	TopMarginRest  int
	BottomMargin   int
	LeftMargin     int
	RightMargin    int
	Gap            int // vertical space between consecutive fragments
	Overlap        int // rows repeated at the top of a continuation fragment
	Inset          int // subtracted from the printable width before scaling

	// WidthFraction is the share of the printable width an image is
	// scaled to, per alignment.
	WidthFraction map[Alignment]float64
	Alignment     Alignment
	SkipPolicy    SkipPolicy
}

// DefaultConfig returns the reference A4 geometry.
func DefaultConfig() Config {
	return Config{
		PageWidth:      A4Width,
		PageHeight:     A4Height,
		TopMarginFirst: 125,
		TopMarginRest:  110,
		BottomMargin:   105,
		Gap:            20,
		Overlap:        25,
		Inset:          20,
		WidthFraction: map[Alignment]float64{
			AlignLeft:   0.70,
			AlignCenter: 0.90,
			AlignRight:  0.70,
		},
		Alignment:  AlignLeft,
		SkipPolicy: ExcludeFromLayout,
	}
}

// Fraction returns the width fraction for the configured alignment.
func (c Config) Fraction() float64 {
	if f, ok := c.WidthFraction[c.Alignment]; ok {
		return f
	}
	return 0.70
}

// printableWidth is the page width minus side margins and inset.
func (c Config) printableWidth() int {
	return c.PageWidth - c.LeftMargin - c.RightMargin - c.Inset
}

// UsableHeight returns the vertical space available for content on a page
// whose content starts at top.
func (c Config) UsableHeight(top int) int {
	return c.PageHeight - top - c.BottomMargin
}

// Validate checks the geometry invariants the engine relies on.
func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return invariant("page size %dx%d must be positive", c.PageWidth, c.PageHeight)
	}
	if c.UsableHeight(c.TopMarginFirst) <= 0 {
		return invariant("first page has no usable height (H=%d, top=%d, bottom=%d)",
			c.PageHeight, c.TopMarginFirst, c.BottomMargin)
	}
	if c.UsableHeight(c.TopMarginRest) <= 0 {
		return invariant("pages have no usable height (H=%d, top=%d, bottom=%d)",
			c.PageHeight, c.TopMarginRest, c.BottomMargin)
	}
	if c.Overlap < 0 || c.Overlap > c.BottomMargin {
		return invariant("overlap %d must be within [0, bottom margin %d]", c.Overlap, c.BottomMargin)
	}
	if c.Gap < 0 {
		return invariant("gap %d must not be negative", c.Gap)
	}
	if c.printableWidth() <= 0 {
		return invariant("no printable width left after margins")
	}
	if f := c.Fraction(); f <= 0 || f > 1 {
		return invariant("width fraction %g for %s must be in (0,1]", f, c.Alignment)
	}
	return nil
}

// ScaledSize returns the size of a w×h image after uniform scaling to the
// configured fraction of the printable width. Both sides are at least 1.
func (c Config) ScaledSize(w, h int) (int, int) {
	target := float64(c.printableWidth()) * c.Fraction()
	scale := target / float64(w)
	sw := max(int(target), 1)
	sh := max(int(float64(h)*scale), 1)
	return sw, sh
}

// OriginX returns the left edge of an image of width w.
func (c Config) OriginX(w int) int {
	switch c.Alignment {
	case AlignCenter:
		return c.LeftMargin + (c.PageWidth-c.LeftMargin-c.RightMargin-w)/2
	case AlignRight:
		return c.PageWidth - c.RightMargin - w
	default:
		return c.LeftMargin
	}
}
