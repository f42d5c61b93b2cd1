package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Fonts holds the parsed scalable font shared by all requests. A nil font
// means only the bitmap fallback is available.
type Fonts struct {
	font   *opentype.Font
	source string
}

// LoadFonts parses the first readable font among paths. When none can be
// used and embedded is true, the bundled Go Bold face is used instead.
// Failing every option is not an error: text is then drawn with fixed
// offsets and a bitmap face.
func LoadFonts(paths []string, embedded bool) *Fonts {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		return &Fonts{font: f, source: p}
	}
	if embedded {
		if f, err := opentype.Parse(gobold.TTF); err == nil {
			return &Fonts{font: f, source: "embedded:gobold"}
		}
	}
	return &Fonts{source: "basicfont"}
}

// Scalable reports whether a scalable font was loaded.
func (f *Fonts) Scalable() bool { return f != nil && f.font != nil }

// Source names where the font came from.
func (f *Fonts) Source() string {
	if f == nil {
		return "basicfont"
	}
	return f.source
}

// Metrics is the ink box of a string laid out at a top-left origin.
type Metrics struct {
	Width, Height int
	Ascent        int // baseline offset from the top of the line
}

// Faces caches sized faces for one request. font.Face values are not safe
// for concurrent use, so a Faces value must not be shared between requests.
type Faces struct {
	fonts *Fonts
	cache map[float64]font.Face
}

// NewFaces starts an empty per-request cache.
func (f *Fonts) NewFaces() *Faces {
	return &Faces{fonts: f, cache: make(map[float64]font.Face)}
}

// Face returns the face for size pixels, or nil when no scalable font is
// available.
func (fs *Faces) Face(size float64) font.Face {
	if !fs.fonts.Scalable() {
		return nil
	}
	if face, ok := fs.cache[size]; ok {
		return face
	}
	face, err := opentype.NewFace(fs.fonts.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	fs.cache[size] = face
	return face
}

// Measure returns the ink metrics of text at size. ok is false when text
// cannot be measured, in which case callers use fixed offsets.
func (fs *Faces) Measure(text string, size float64) (Metrics, bool) {
	face := fs.Face(size)
	if face == nil {
		return Metrics{}, false
	}
	b, _ := font.BoundString(face, text)
	return Metrics{
		Width:  (b.Max.X - b.Min.X).Ceil(),
		Height: (b.Max.Y - b.Min.Y).Ceil(),
		Ascent: face.Metrics().Ascent.Ceil(),
	}, true
}

// Close releases every cached face.
func (fs *Faces) Close() error {
	var firstErr error
	for size, face := range fs.cache {
		if err := face.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close face %g: %w", size, err)
		}
	}
	fs.cache = map[float64]font.Face{}
	return firstErr
}

// fallbackFace is used wherever no scalable face exists.
var fallbackFace font.Face = basicfont.Face7x13

// dot converts a top-left text origin into the baseline point font.Drawer
// expects.
func dot(face font.Face, x, y int) fixed.Point26_6 {
	return fixed.P(x, y+face.Metrics().Ascent.Ceil())
}
