package paper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"paper_binder/layout"
	"paper_binder/pdf"
	"paper_binder/render"
)

// Result is a finished document.
type Result struct {
	PDF      []byte
	Pages    int
	Items    []ItemResult
	Filename string
}

// Warnings returns one message per image that could not be used.
func (r *Result) Warnings() []string { return warnings(r.Items) }

// Generate builds the PDF for req. Rule parse errors, layout invariant
// violations and assembly failures abort the request; unreadable images
// are reported in Items and the rest of the batch continues.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	j, err := g.prepare(req)
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer(j.cfg, g.style, g.fonts)
	defer r.Close()

	flow, err := layout.NewFlow(j.cfg, r.HeaderHeight(j.header))
	if err != nil {
		return nil, err
	}

	w := &pageWriter{r: r, enc: g.encoder, canvas: r.NewCanvas(0)}
	w.canvas.DrawHeader(j.header)

	items, err := j.walk(ctx, func(s slot, res *ItemResult) error {
		img, err := s.src.decode(g.maxPixels)
		if err != nil {
			res.Err = err
			return nil
		}
		img = g.filter.Enhance(img)
		b := img.Bounds()
		it := j.item(s, b.Dx(), b.Dy())
		scaled := scale(img, it.Width, it.Height)

		frags, err := flow.Place(it)
		if err != nil {
			return err
		}
		for _, fr := range frags {
			if err := w.advance(fr.Page); err != nil {
				return err
			}
			w.canvas.DrawFragment(scaled, fr)
		}
		res.Fragments = frags
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan := flow.Finish()
	if err := w.advance(len(plan.Pages) - 1); err != nil {
		return nil, err
	}
	if err := w.flush(); err != nil {
		return nil, err
	}

	doc, err := pdf.Assemble(w.pages, g.output)
	if err != nil {
		return nil, err
	}

	res := &Result{
		PDF:      doc,
		Pages:    len(w.pages),
		Items:    items,
		Filename: documentName(j.header, ".pdf"),
	}
	j.log.WithFields(logrus.Fields{
		"pages":    res.Pages,
		"warnings": len(res.Warnings()),
		"bytes":    len(doc),
		"duration": time.Since(start).String(),
	}).Info("Document generated")
	return res, nil
}

// pageWriter paints pages in order and encodes each one as soon as the
// layout moves past it, so only one full-size canvas is alive at a time.
type pageWriter struct {
	r      *render.Renderer
	enc    pdf.Encoder
	canvas *render.Canvas
	pages  [][]byte
}

// advance finishes pages until the canvas for page is current.
func (w *pageWriter) advance(page int) error {
	for w.canvas.Index() < page {
		if err := w.flush(); err != nil {
			return err
		}
		w.canvas = w.r.NewCanvas(w.canvas.Index() + 1)
	}
	return nil
}

func (w *pageWriter) flush() error {
	data, err := w.enc.Encode(w.canvas.Finish())
	if err != nil {
		return err
	}
	w.pages = append(w.pages, data)
	return nil
}
