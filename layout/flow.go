package layout

// Item is one image ready to be placed, already scaled to page pixels.
type Item struct {
	ID     int // caller's identifier, usually the 1-based image position
	Width  int
	Height int

	Label   int
	Labeled bool

	Strip    float64 // fraction of the width to blank on every fragment
	HasStrip bool
}

// Fragment is the part of one item that lands on one page.
type Fragment struct {
	ItemID int `json:"item_id"`
	Page   int `json:"page"`  // 0-based page index
	SrcY   int `json:"src_y"` // first row of the scaled item covered by this fragment
	Height int `json:"height"`
	X      int `json:"x"` // top-left corner on the page
	Y      int `json:"y"`
	Width  int `json:"width"`

	// Labeled is set on the first fragment of a labelled item only.
	Labeled bool `json:"labeled"`
	Label   int  `json:"label,omitempty"`

	Strip    float64 `json:"strip,omitempty"`
	HasStrip bool    `json:"has_strip"`

	// Final marks the last fragment of the item.
	Final bool `json:"final"`
}

// Page is one finished page of the plan.
type Page struct {
	Index     int        `json:"index"`
	Header    bool       `json:"header"` // page carries the document header
	Fragments []Fragment `json:"fragments"`
	CursorY   int        `json:"cursor_y"` // next free row when the page was closed
}

// Plan is the complete result of a layout pass.
type Plan struct {
	Pages []Page `json:"pages"`
}

// FragmentsFor returns every fragment of the item with the given id, in
// placement order.
func (p *Plan) FragmentsFor(id int) []Fragment {
	var out []Fragment
	for _, pg := range p.Pages {
		for _, fr := range pg.Fragments {
			if fr.ItemID == id {
				out = append(out, fr)
			}
		}
	}
	return out
}

// Flow places items one after another. It is not safe for concurrent use;
// one Flow belongs to one generation request.
type Flow struct {
	cfg    Config
	pages  []Page
	cur    Page
	cursor int
}

// NewFlow validates cfg and opens the first page. headerHeight is the
// space the page-1 header occupies below the first top margin.
func NewFlow(cfg Config, headerHeight int) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if headerHeight < 0 {
		return nil, invariant("negative header height %d", headerHeight)
	}
	top := cfg.TopMarginFirst + headerHeight
	if cfg.UsableHeight(top) <= 0 {
		return nil, invariant("header of %d rows leaves no room on the first page", headerHeight)
	}
	return &Flow{
		cfg:    cfg,
		cur:    Page{Index: 0, Header: true},
		cursor: top,
	}, nil
}

// Config returns the geometry the flow was built with.
func (f *Flow) Config() Config { return f.cfg }

// Cursor returns the next free row on the current page.
func (f *Flow) Cursor() int { return f.cursor }

// PageIndex returns the 0-based index of the page being filled.
func (f *Flow) PageIndex() int { return f.cur.Index }

// Place lays out one item starting at the current cursor and returns its
// fragments. When the item does not fit in the space left, the page is cut
// at the bottom margin plus Overlap rows, and the next page resumes Overlap
// rows before the cut. An item may span any number of pages.
func (f *Flow) Place(it Item) ([]Fragment, error) {
	if it.Width <= 0 || it.Height <= 0 {
		return nil, invariant("item %d has empty size %dx%d", it.ID, it.Width, it.Height)
	}

	var frags []Fragment
	x := f.cfg.OriginX(it.Width)
	srcY := 0
	left := it.Height

	for left > 0 {
		remaining := f.cfg.UsableHeight(f.cursor)

		if left <= remaining {
			frags = append(frags, f.put(it, x, srcY, left, len(frags) == 0, true))
			break
		}

		// The previous fragment ran the cursor past the bottom margin;
		// nothing can be cut here.
		if remaining <= 0 {
			f.newPage()
			continue
		}

		h := min(remaining+f.cfg.Overlap, left)
		frags = append(frags, f.put(it, x, srcY, h, len(frags) == 0, false))
		srcY += remaining
		left -= remaining
		f.newPage()
	}

	return frags, nil
}

func (f *Flow) put(it Item, x, srcY, h int, first, final bool) Fragment {
	fr := Fragment{
		ItemID:   it.ID,
		Page:     f.cur.Index,
		SrcY:     srcY,
		Height:   h,
		X:        x,
		Y:        f.cursor,
		Width:    it.Width,
		Strip:    it.Strip,
		HasStrip: it.HasStrip,
		Final:    final,
	}
	if first && it.Labeled {
		fr.Labeled = true
		fr.Label = it.Label
	}
	f.cur.Fragments = append(f.cur.Fragments, fr)
	f.cursor += h + f.cfg.Gap
	return fr
}

func (f *Flow) newPage() {
	f.cur.CursorY = f.cursor
	f.pages = append(f.pages, f.cur)
	f.cur = Page{Index: f.cur.Index + 1}
	f.cursor = f.cfg.TopMarginRest
}

// Finish closes the current page and returns the plan. A flow with no
// items yields exactly one page. The flow must not be used afterwards.
func (f *Flow) Finish() *Plan {
	f.cur.CursorY = f.cursor
	pages := append(f.pages, f.cur)
	f.pages = nil
	return &Plan{Pages: pages}
}

// PlanAll runs a fresh flow over items.
func PlanAll(cfg Config, headerHeight int, items []Item) (*Plan, error) {
	flow, err := NewFlow(cfg, headerHeight)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := flow.Place(it); err != nil {
			return nil, err
		}
	}
	return flow.Finish(), nil
}
