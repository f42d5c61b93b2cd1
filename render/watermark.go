package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Watermark is the translucent word stamped diagonally across every page.
type Watermark struct {
	Text    string
	Angle   float64 // degrees, counter-clockwise
	Opacity float64 // 0..1
	Size    float64 // glyph size in pixels
}

// DefaultWatermark returns the reference stamp.
func DefaultWatermark() Watermark {
	return Watermark{Text: "LFJC", Angle: 45, Opacity: 0.20, Size: 800}
}

func (w Watermark) alpha() uint8 {
	a := math.Round(255 * math.Min(math.Max(w.Opacity, 0), 1))
	return uint8(a)
}

// drawWatermark rasterizes the text into a tight box, then rotates it about
// its center onto the center of the page.
func (r *Renderer) drawWatermark(page *image.RGBA) {
	wm := r.style.Watermark
	if wm.Text == "" || wm.Opacity <= 0 {
		return
	}

	face := r.faces.Face(wm.Size)
	scale := 1.0
	col := color.NRGBA{0, 0, 0, wm.alpha()}
	interp := draw.Interpolator(draw.BiLinear)
	if face == nil {
		// Bitmap glyphs blown up to the requested size.
		face = fallbackFace
		scale = wm.Size / float64(face.Metrics().Height.Ceil())
		col = color.NRGBA{128, 128, 128, wm.alpha()}
		interp = draw.NearestNeighbor
	}

	stamp := rasterize(face, wm.Text, col)
	if stamp == nil {
		return
	}

	pb := page.Bounds()
	transform := rotateAbout(
		float64(stamp.Bounds().Dx())/2, float64(stamp.Bounds().Dy())/2,
		float64(pb.Dx())/2, float64(pb.Dy())/2,
		wm.Angle, scale,
	)
	interp.Transform(page, transform, stamp, stamp.Bounds(), draw.Over, nil)
}

// rasterize draws text into an image just large enough for its ink.
func rasterize(face font.Face, text string, col color.Color) *image.RGBA {
	b, _ := font.BoundString(face, text)
	w := (b.Max.X - b.Min.X).Ceil()
	h := (b.Max.Y - b.Min.Y).Ceil()
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: -b.Min.X, Y: -b.Min.Y},
	}
	d.DrawString(text)
	return img
}

// rotateAbout maps source point (sx, sy) to destination point (dx, dy),
// rotating by deg counter-clockwise as seen on screen and scaling by k.
func rotateAbout(sx, sy, dx, dy, deg, k float64) f64.Aff3 {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad)*k, math.Sin(rad)*k
	return f64.Aff3{
		cos, sin, dx - (cos*sx + sin*sy),
		-sin, cos, dy - (-sin*sx + cos*sy),
	}
}
