package paper

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Bundle is a ZIP of the processed, numbered images.
type Bundle struct {
	Data     []byte
	Filename string
	Files    []string
	Items    []ItemResult
}

// Warnings returns one message per image that could not be used.
func (b *Bundle) Warnings() []string { return warnings(b.Items) }

// Archive writes every labelled image, enhanced and with its strip cut off
// the left edge, as "<label>.png". A label used twice gets "_2", "_3" and so
// on. Unlabelled images are left out whatever the skip policy.
func (g *Generator) Archive(ctx context.Context, req Request) (*Bundle, error) {
	j, err := g.prepare(req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)
	var files []string

	items, err := j.walk(ctx, func(s slot, res *ItemResult) error {
		if !s.labeled {
			res.Skipped = true
			return nil
		}
		img, err := s.src.decode(g.maxPixels)
		if err != nil {
			res.Err = err
			return nil
		}
		img = g.filter.Enhance(img)
		if ratio, ok := j.strips.Lookup(s.label); ok {
			img = cropStrip(img, ratio)
		}

		name := SanitizeLabel(strconv.Itoa(s.label))
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		name += ".png"

		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	j.log.WithFields(logrus.Fields{
		"files": len(files),
		"bytes": buf.Len(),
	}).Info("Archive generated")

	return &Bundle{
		Data:     buf.Bytes(),
		Filename: documentName(j.header, ".zip"),
		Files:    files,
		Items:    items,
	}, nil
}

// cropStrip keeps the right (1-ratio) share of the width. At least one
// column survives.
func cropStrip(img image.Image, ratio float64) image.Image {
	if ratio <= 0 {
		return img
	}
	b := img.Bounds()
	keep := max(int(float64(b.Dx())*(1-ratio)), 1)
	rect := image.Rect(b.Max.X-keep, b.Min.Y, b.Max.X, b.Max.Y)
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, keep, b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}
