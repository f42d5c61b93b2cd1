package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func pageRaster(t *testing.T, enc Encoder, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 248, 350))
	for y := 0; y < 350; y++ {
		for x := 0; x < 248; x++ {
			img.SetRGBA(x, y, color.RGBA{shade, shade, shade, 255})
		}
	}
	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestAssembleEmpty(t *testing.T) {
	_, err := Assemble(nil, Options{})
	if !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Errorf("expected *AssemblyError, got %T", err)
	}
}

func TestAssemblePageCount(t *testing.T) {
	for _, enc := range []Encoder{{Format: FormatPNG}, {Format: FormatJPEG, Quality: 80}} {
		pages := [][]byte{pageRaster(t, enc, 255), pageRaster(t, enc, 200), pageRaster(t, enc, 100)}
		doc, err := Assemble(pages, Options{DPI: 300})
		if err != nil {
			t.Fatalf("format %d: assemble: %v", enc.Format, err)
		}
		if !bytes.HasPrefix(doc, []byte("%PDF")) {
			t.Fatalf("format %d: output is not a PDF", enc.Format)
		}
		n, err := PageCount(doc)
		if err != nil {
			t.Fatalf("format %d: page count: %v", enc.Format, err)
		}
		if n != 3 {
			t.Errorf("format %d: page count = %d, want 3", enc.Format, n)
		}
	}
}

func TestAssembleOptimized(t *testing.T) {
	enc := Encoder{}
	doc, err := Assemble([][]byte{pageRaster(t, enc, 255)}, Options{Optimize: true})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if n, err := PageCount(doc); err != nil || n != 1 {
		t.Errorf("page count = %d, %v", n, err)
	}
}

func TestAssembleRejectsGarbage(t *testing.T) {
	_, err := Assemble([][]byte{[]byte("not an image")}, Options{})
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AssemblyError, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JPG"); err != nil || f != FormatJPEG {
		t.Errorf("ParseFormat(JPG) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatPNG {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("expected error for gif")
	}
}
