package layout

import (
	"testing"

	"pgregory.net/rapid"
)

func drawConfig(t *rapid.T) Config {
	bottom := rapid.IntRange(0, 100).Draw(t, "bottom")
	return Config{
		PageWidth:      rapid.IntRange(100, 2500).Draw(t, "width"),
		PageHeight:     rapid.IntRange(400, 3500).Draw(t, "height"),
		TopMarginFirst: rapid.IntRange(0, 100).Draw(t, "top_first"),
		TopMarginRest:  rapid.IntRange(0, 100).Draw(t, "top_rest"),
		BottomMargin:   bottom,
		Gap:            rapid.IntRange(0, 30).Draw(t, "gap"),
		Overlap:        rapid.IntRange(0, bottom).Draw(t, "overlap"),
		WidthFraction:  map[Alignment]float64{AlignLeft: 0.7, AlignCenter: 0.9, AlignRight: 0.7},
		Alignment:      Alignment(rapid.IntRange(0, 2).Draw(t, "alignment")),
	}
}

func drawItems(t *rapid.T, cfg Config) []Item {
	n := rapid.IntRange(0, 8).Draw(t, "items")
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			ID:      i + 1,
			Width:   rapid.IntRange(1, cfg.PageWidth).Draw(t, "item_width"),
			Height:  rapid.IntRange(1, 3*cfg.PageHeight).Draw(t, "item_height"),
			Label:   i + 1,
			Labeled: rapid.Bool().Draw(t, "labeled"),
		}
	}
	return items
}

func TestFlowProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		header := rapid.IntRange(0, 50).Draw(t, "header")
		items := drawItems(t, cfg)

		plan, err := PlanAll(cfg, header, items)
		if err != nil {
			t.Fatalf("PlanAll: %v", err)
		}
		if len(plan.Pages) == 0 || !plan.Pages[0].Header {
			t.Fatalf("plan must start with the header page")
		}

		bottom := cfg.PageHeight - cfg.BottomMargin
		for i, pg := range plan.Pages {
			if pg.Index != i {
				t.Fatalf("page %d has index %d", i, pg.Index)
			}
			top := cfg.TopMarginRest
			if i == 0 {
				top = cfg.TopMarginFirst + header
			}
			for k, fr := range pg.Fragments {
				if fr.Y < top {
					t.Fatalf("page %d: fragment at %d above the top margin %d", i, fr.Y, top)
				}
				limit := bottom + cfg.Overlap
				if fr.Final {
					limit = bottom
				}
				if fr.Y+fr.Height > limit {
					t.Fatalf("page %d: fragment ends at %d past %d", i, fr.Y+fr.Height, limit)
				}
				if k > 0 {
					prev := pg.Fragments[k-1]
					if fr.Y != prev.Y+prev.Height+cfg.Gap {
						t.Fatalf("page %d: fragment at %d does not follow %d+%d+gap", i, fr.Y, prev.Y, prev.Height)
					}
				}
			}
		}

		for _, it := range items {
			frags := plan.FragmentsFor(it.ID)
			if len(frags) == 0 {
				t.Fatalf("item %d not placed", it.ID)
			}
			if frags[0].SrcY != 0 {
				t.Fatalf("item %d starts at row %d", it.ID, frags[0].SrcY)
			}
			last := frags[len(frags)-1]
			if !last.Final || last.SrcY+last.Height != it.Height {
				t.Fatalf("item %d: last fragment covers up to %d of %d", it.ID, last.SrcY+last.Height, it.Height)
			}
			for k, fr := range frags {
				if fr.Height <= 0 || fr.Width != it.Width {
					t.Fatalf("item %d: bad fragment %+v", it.ID, fr)
				}
				if fr.Labeled != (k == 0 && it.Labeled) {
					t.Fatalf("item %d fragment %d: labeled=%v", it.ID, k, fr.Labeled)
				}
				if k == 0 {
					continue
				}
				prev := frags[k-1]
				if fr.Page != prev.Page+1 {
					t.Fatalf("item %d: continuation on page %d after %d", it.ID, fr.Page, prev.Page)
				}
				if fr.SrcY <= prev.SrcY || fr.SrcY > prev.SrcY+prev.Height {
					t.Fatalf("item %d: rows %d.. leave a gap after %d+%d", it.ID, fr.SrcY, prev.SrcY, prev.Height)
				}
				if fr.Y != cfg.TopMarginRest {
					t.Fatalf("item %d: continuation starts at %d", it.ID, fr.Y)
				}
			}
		}
	})
}
