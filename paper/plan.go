package paper

import (
	"context"

	"paper_binder/layout"
	"paper_binder/render"
)

// Preview is the layout of a request without any pixels painted.
type Preview struct {
	Plan         *layout.Plan
	HeaderHeight int
	Items        []ItemResult
	Filename     string
}

// Warnings returns one message per image that could not be used.
func (p *Preview) Warnings() []string { return warnings(p.Items) }

// Plan runs numbering and layout for req. Only image headers are read, so
// an image that is truncated after its header shows up here but fails in
// Generate.
func (g *Generator) Plan(ctx context.Context, req Request) (*Preview, error) {
	j, err := g.prepare(req)
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer(j.cfg, g.style, g.fonts)
	defer r.Close()
	headerHeight := r.HeaderHeight(j.header)

	flow, err := layout.NewFlow(j.cfg, headerHeight)
	if err != nil {
		return nil, err
	}

	items, err := j.walk(ctx, func(s slot, res *ItemResult) error {
		w, h, err := s.src.size(g.maxPixels)
		if err != nil {
			res.Err = err
			return nil
		}
		frags, err := flow.Place(j.item(s, w, h))
		if err != nil {
			return err
		}
		res.Fragments = frags
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Preview{
		Plan:         flow.Finish(),
		HeaderHeight: headerHeight,
		Items:        items,
		Filename:     documentName(j.header, ".pdf"),
	}, nil
}
