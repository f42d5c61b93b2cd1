// Package render paints a layout plan: it copies image fragments onto A4
// canvases and adds the header, question labels, redaction strips, the
// watermark and page numbers.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"paper_binder/layout"
)

// Header is the text printed at the top of the first page.
type Header struct {
	Institution string
	ExamType    string
	ExamDate    string
}

// Subtitle joins exam type and date the way they are printed.
func (h Header) Subtitle() string {
	return fmt.Sprintf("%s   %s", h.ExamType, h.ExamDate)
}

// Style holds font sizes and the watermark settings.
type Style struct {
	HeaderSize     float64
	SubheaderSize  float64
	LabelSize      float64
	PageNumberSize float64
	Watermark      Watermark
}

// DefaultStyle returns the sizes used on 300 DPI pages.
func DefaultStyle() Style {
	return Style{
		HeaderSize:     60,
		SubheaderSize:  45,
		LabelSize:      40,
		PageNumberSize: 30,
		Watermark:      DefaultWatermark(),
	}
}

// Fixed offsets used when text cannot be measured.
const (
	fallbackTitleAdvance    = 80
	fallbackSubtitleAdvance = 60
	titleSpacing            = 10
	subtitleSpacing         = 40
	labelInset              = 10
	pageNumberLift          = 20
	fallbackPageNumberRise  = 50
)

var ink = image.NewUniform(color.Black)

// Renderer draws pages for one request. It owns a Faces cache and is not
// safe for concurrent use.
type Renderer struct {
	cfg   layout.Config
	style Style
	faces *Faces
}

// NewRenderer prepares a renderer for one request.
func NewRenderer(cfg layout.Config, style Style, fonts *Fonts) *Renderer {
	return &Renderer{cfg: cfg, style: style, faces: fonts.NewFaces()}
}

// Close releases cached faces.
func (r *Renderer) Close() error { return r.faces.Close() }

// HeaderHeight returns the rows the header occupies below the first top
// margin.
func (r *Renderer) HeaderHeight(h Header) int {
	height := fallbackTitleAdvance
	if m, ok := r.faces.Measure(h.Institution, r.style.HeaderSize); ok {
		height = m.Height + titleSpacing
	}
	if m, ok := r.faces.Measure(h.Subtitle(), r.style.SubheaderSize); ok {
		height += m.Height + subtitleSpacing
	} else {
		height += fallbackSubtitleAdvance
	}
	return height
}

// Canvas is one page being painted.
type Canvas struct {
	r     *Renderer
	index int
	img   *image.RGBA
}

// NewCanvas returns a white page. index is 0-based.
func (r *Renderer) NewCanvas(index int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, r.cfg.PageWidth, r.cfg.PageHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &Canvas{r: r, index: index, img: img}
}

// Index returns the 0-based page index.
func (c *Canvas) Index() int { return c.index }

// Image exposes the pixels painted so far.
func (c *Canvas) Image() *image.RGBA { return c.img }

// DrawHeader prints the institution name and the exam line, centered,
// starting at the first top margin.
func (c *Canvas) DrawHeader(h Header) {
	st := c.r.style
	y := c.r.cfg.TopMarginFirst
	w := c.r.cfg.PageWidth

	if m, ok := c.r.faces.Measure(h.Institution, st.HeaderSize); ok {
		c.text(c.img, c.r.faces.Face(st.HeaderSize), h.Institution, (w-m.Width)/2, y)
		y += m.Height + titleSpacing
	} else {
		c.text(c.img, fallbackFace, h.Institution, w/4, y)
		y += fallbackTitleAdvance
	}

	sub := h.Subtitle()
	if m, ok := c.r.faces.Measure(sub, st.SubheaderSize); ok {
		c.text(c.img, c.r.faces.Face(st.SubheaderSize), sub, (w-m.Width)/2, y)
	} else {
		c.text(c.img, fallbackFace, sub, w/3, y)
	}
}

// DrawFragment copies rows [fr.SrcY, fr.SrcY+fr.Height) of the scaled item
// to the fragment's place, blanks the strip and prints the label. Drawing is
// clipped to the fragment rectangle.
func (c *Canvas) DrawFragment(item image.Image, fr layout.Fragment) {
	rect := image.Rect(fr.X, fr.Y, fr.X+fr.Width, fr.Y+fr.Height)
	sp := item.Bounds().Min.Add(image.Pt(0, fr.SrcY))
	draw.Draw(c.img, rect, item, sp, draw.Src)

	dst, ok := c.img.SubImage(rect).(*image.RGBA)
	if !ok || dst.Rect.Empty() {
		return
	}

	stripW := 0
	if fr.HasStrip {
		stripW = int(float64(fr.Width) * fr.Strip)
		draw.Draw(dst, image.Rect(fr.X, fr.Y, fr.X+stripW, fr.Y+fr.Height), image.White, image.Point{}, draw.Src)
	}

	if !fr.Labeled {
		return
	}
	label := strconv.Itoa(fr.Label) + "."
	size := c.r.style.LabelSize
	if m, ok := c.r.faces.Measure(label, size); ok {
		x := labelInset
		if fr.HasStrip {
			x = stripW - m.Width - labelInset
		}
		c.text(dst, c.r.faces.Face(size), label, fr.X+x, fr.Y+labelInset)
		return
	}
	c.text(dst, fallbackFace, label, fr.X+labelInset, fr.Y+labelInset)
}

// Finish applies the watermark over all content, then the page number on
// every page after the first, and returns the finished pixels.
func (c *Canvas) Finish() *image.RGBA {
	c.r.drawWatermark(c.img)
	if c.index > 0 {
		c.drawPageNumber()
	}
	return c.img
}

func (c *Canvas) drawPageNumber() {
	cfg := c.r.cfg
	text := strconv.Itoa(c.index + 1)
	size := c.r.style.PageNumberSize
	if m, ok := c.r.faces.Measure(text, size); ok {
		x := (cfg.PageWidth - m.Width) / 2
		y := cfg.PageHeight - cfg.BottomMargin + (cfg.BottomMargin-m.Height)/2 - pageNumberLift
		c.text(c.img, c.r.faces.Face(size), text, x, y)
		return
	}
	c.text(c.img, fallbackFace, text, cfg.PageWidth/2, cfg.PageHeight-fallbackPageNumberRise)
}

// text draws s with its line top at (x, y).
func (c *Canvas) text(dst draw.Image, face font.Face, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  ink,
		Face: face,
		Dot:  dot(face, x, y),
	}
	d.DrawString(s)
}
