// Package enhance cleans up scanned answer sheets before layout.
//
// The layout core only needs a Filter; Enhancer is the default one used by
// the server and can be swapped for any other implementation.
package enhance

import (
	"image"

	"golang.org/x/image/draw"
)

// Filter returns an image of the same size with no transparency.
type Filter interface {
	Enhance(img image.Image) image.Image
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(image.Image) image.Image

func (f FilterFunc) Enhance(img image.Image) image.Image { return f(img) }

// Identity flattens img onto white and otherwise leaves it untouched.
var Identity Filter = FilterFunc(flatten)

func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Enhancer binarizes a scan: grayscale, adaptive mean threshold, then a
// 3x3 sharpen.
type Enhancer struct {
	BlockSize int // odd neighbourhood size for the local mean
	C         int // subtracted from the local mean
	Sharpen   bool
}

// NewEnhancer returns the default settings (block 29, C 17, sharpen on).
func NewEnhancer() *Enhancer {
	return &Enhancer{BlockSize: 29, C: 17, Sharpen: true}
}

// Enhance implements Filter.
func (e *Enhancer) Enhance(img image.Image) image.Image {
	gray := toGray(img)
	bin := e.threshold(gray)
	if e.Sharpen {
		bin = sharpen(bin)
	}
	return bin
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	flat := flatten(img)
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), flat, image.Point{}, draw.Src)
	return g
}

// threshold sets a pixel white when it is brighter than the mean of its
// BlockSize neighbourhood minus C, black otherwise.
func (e *Enhancer) threshold(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(src.Rect)
	if w == 0 || h == 0 {
		return dst
	}
	r := max(e.BlockSize/2, 1)

	// Horizontal window sums per row.
	hs := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		var sum uint32
		for x := 0; x <= min(r, w-1); x++ {
			sum += uint32(row[x])
		}
		for x := 0; x < w; x++ {
			hs[y*w+x] = sum
			if out := x - r; out >= 0 {
				sum -= uint32(row[out])
			}
			if in := x + r + 1; in < w {
				sum += uint32(row[in])
			}
		}
	}

	col := make([]uint64, w)
	for y := 0; y <= min(r, h-1); y++ {
		for x := 0; x < w; x++ {
			col[x] += uint64(hs[y*w+x])
		}
	}

	for y := 0; y < h; y++ {
		ny := min(y+r, h-1) - max(y-r, 0) + 1
		for x := 0; x < w; x++ {
			nx := min(x+r, w-1) - max(x-r, 0) + 1
			mean := int(col[x] / uint64(nx*ny))
			v := int(src.Pix[y*src.Stride+x])
			if v > mean-e.C {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
		if out := y - r; out >= 0 {
			for x := 0; x < w; x++ {
				col[x] -= uint64(hs[out*w+x])
			}
		}
		if in := y + r + 1; in < h {
			for x := 0; x < w; x++ {
				col[x] += uint64(hs[in*w+x])
			}
		}
	}
	return dst
}

// sharpen applies the kernel [0 -1 0; -1 5 -1; 0 -1 0] with edge
// replication.
func sharpen(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(src.Rect)
	at := func(x, y int) int {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return int(src.Pix[y*src.Stride+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 5*at(x, y) - at(x-1, y) - at(x+1, y) - at(x, y-1) - at(x, y+1)
			dst.Pix[y*dst.Stride+x] = uint8(min(max(v, 0), 255))
		}
	}
	return dst
}
