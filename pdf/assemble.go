package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrNoPages is wrapped by the AssemblyError returned for an empty page list.
var ErrNoPages = errors.New("no pages to assemble")

// AssemblyError reports a failure to build the output document.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return "assemble pdf: " + e.Err.Error()
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Format selects how page rasters are embedded.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

// ParseFormat accepts "png" or "jpeg"/"jpg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return FormatPNG, fmt.Errorf("unknown page format %q", s)
}

// UnmarshalText lets the format be read from YAML configuration.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Encoder turns finished page rasters into bytes pdfcpu can import.
type Encoder struct {
	Format  Format
	Quality int // JPEG only
}

// Encode encodes one page.
func (e Encoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch e.Format {
	case FormatJPEG:
		q := e.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("encode page as jpeg: %w", err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page as png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Options controls document assembly.
type Options struct {
	DPI      int
	Optimize bool
}

// Assemble imports the encoded pages, in order, as full-bleed A4 pages of
// a new document and tags it with its raster resolution.
func Assemble(pages [][]byte, opts Options) ([]byte, error) {
	if len(pages) == 0 {
		return nil, &AssemblyError{Err: ErrNoPages}
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}

	imp, err := api.Import("form:"+PageForm+", pos:full", types.POINTS)
	if err != nil {
		return nil, &AssemblyError{Err: fmt.Errorf("import settings: %w", err)}
	}

	readers := make([]io.Reader, len(pages))
	for i, p := range pages {
		readers[i] = bytes.NewReader(p)
	}

	var doc bytes.Buffer
	if err := api.ImportImages(nil, &doc, readers, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, &AssemblyError{Err: fmt.Errorf("pdfcpu import failed: %w", err)}
	}

	props := map[string]string{
		"Resolution": strconv.Itoa(opts.DPI) + " DPI",
		"Generator":  Producer,
	}
	var tagged bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(doc.Bytes()), &tagged, props, model.NewDefaultConfiguration()); err != nil {
		return nil, &AssemblyError{Err: fmt.Errorf("pdfcpu properties failed: %w", err)}
	}

	out := tagged.Bytes()
	if opts.Optimize {
		if out, err = Optimize(out); err != nil {
			return nil, &AssemblyError{Err: err}
		}
	}
	return out, nil
}
