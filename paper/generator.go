// Package paper turns a batch of answer-sheet scans into a numbered,
// paginated document. It ties the rule parsers, numbering, layout, render
// and pdf packages together for one request at a time.
package paper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"paper_binder/config"
	"paper_binder/enhance"
	"paper_binder/layout"
	"paper_binder/numbering"
	"paper_binder/pdf"
	"paper_binder/render"
	"paper_binder/rules"
	"paper_binder/sequence"
)

// ErrMissingHeader is returned when the exam type or date is blank.
var ErrMissingHeader = errors.New("exam type and exam date are required")

// Header is the first-page header text.
type Header = render.Header

// Request is one generation job.
type Request struct {
	RequestID string
	Images    []SourceImage
	Header    Header

	StripRules []rules.StripRule
	Numbering  string // "pos[-pos]:start" tokens
	Skip       string // positions excluded from auto numbering

	// Nil means the configured default.
	Alignment  *layout.Alignment
	SkipPolicy *layout.SkipPolicy
}

// ItemResult describes what happened to one uploaded image.
type ItemResult struct {
	Position  int // 1-based, after natural ordering
	Name      string
	Label     int
	Labeled   bool
	Skipped   bool // left out of the document by the skip policy
	Fragments []layout.Fragment
	Err       error
}

// Generator builds documents from a shared read-only configuration. It
// holds no per-request state and may be used by concurrent requests.
type Generator struct {
	layout      layout.Config
	style       render.Style
	fonts       *render.Fonts
	filter      enhance.Filter
	encoder     pdf.Encoder
	output      pdf.Options
	institution string
	maxPixels   int64
	log         *logrus.Logger
}

// New prepares a generator. The layout section is validated here so a bad
// configuration fails at start-up.
func New(cfg *config.Config, fonts *render.Fonts, log *logrus.Logger) (*Generator, error) {
	lc := cfg.LayoutConfig()
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{
		layout:      lc,
		style:       cfg.Style(),
		fonts:       fonts,
		filter:      cfg.Filter(),
		encoder:     cfg.Encoder(),
		output:      pdf.Options{DPI: cfg.Output.DPI, Optimize: cfg.Output.Optimize},
		institution: cfg.Header.Institution,
		maxPixels:   cfg.Server.MaxImagePixels,
		log:         log,
	}, nil
}

// slot is one image position with its numbering decided.
type slot struct {
	position int
	src      SourceImage
	label    int
	labeled  bool
	skipped  bool
}

// job is a parsed request.
type job struct {
	cfg    layout.Config
	header Header
	strips rules.StripMapping
	slots  []slot
	log    *logrus.Entry
}

func (g *Generator) prepare(req Request) (*job, error) {
	header := req.Header
	header.ExamType = strings.TrimSpace(header.ExamType)
	header.ExamDate = strings.TrimSpace(header.ExamDate)
	if header.ExamType == "" || header.ExamDate == "" {
		return nil, ErrMissingHeader
	}
	if strings.TrimSpace(header.Institution) == "" {
		header.Institution = g.institution
	}

	strips, err := rules.BuildStripMapping(req.StripRules)
	if err != nil {
		return nil, fmt.Errorf("strip rules: %w", err)
	}
	skip, err := rules.ParseSkipSet(req.Skip)
	if err != nil {
		return nil, fmt.Errorf("skip positions: %w", err)
	}
	engine := numbering.New(rules.ParseNumberingOverrides(req.Numbering), skip)

	cfg := g.layout
	if req.Alignment != nil {
		cfg.Alignment = *req.Alignment
	}
	if req.SkipPolicy != nil {
		cfg.SkipPolicy = *req.SkipPolicy
	}

	images := append([]SourceImage(nil), req.Images...)
	sequence.SortFunc(images, func(s SourceImage) string { return s.Name })

	slots := make([]slot, len(images))
	for i, src := range images {
		label, labeled := engine.LabelFor(i + 1)
		slots[i] = slot{
			position: i + 1,
			src:      src,
			label:    label,
			labeled:  labeled,
			skipped:  !labeled && cfg.SkipPolicy == layout.ExcludeFromLayout,
		}
	}

	return &job{
		cfg:    cfg,
		header: header,
		strips: strips,
		slots:  slots,
		log: g.log.WithFields(logrus.Fields{
			"request_id": req.RequestID,
			"images":     len(images),
		}),
	}, nil
}

// walk visits every position in order. Skipped positions are recorded
// without calling visit. visit reports per-image failures through res.Err
// and returns an error only to abort the request. The context is checked
// between images.
func (j *job) walk(ctx context.Context, visit func(s slot, res *ItemResult) error) ([]ItemResult, error) {
	results := make([]ItemResult, 0, len(j.slots))
	for _, s := range j.slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := ItemResult{
			Position: s.position,
			Name:     s.src.Name,
			Label:    s.label,
			Labeled:  s.labeled,
			Skipped:  s.skipped,
		}
		if !s.skipped {
			if err := visit(s, &res); err != nil {
				return nil, err
			}
		}
		if res.Err != nil {
			j.log.WithFields(logrus.Fields{
				"position": s.position,
				"name":     s.src.Name,
			}).WithError(res.Err).Warn("Image left out of the document")
		}
		results = append(results, res)
	}
	return results, nil
}

// item builds the layout item for an image of w×h source pixels.
func (j *job) item(s slot, w, h int) layout.Item {
	sw, sh := j.cfg.ScaledSize(w, h)
	it := layout.Item{
		ID:      s.position,
		Width:   sw,
		Height:  sh,
		Label:   s.label,
		Labeled: s.labeled,
	}
	if s.labeled {
		it.Strip, it.HasStrip = j.strips.Lookup(s.label)
	}
	return it
}

// scale resamples img to w×h.
func scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// warnings lists per-image failures as error text.
func warnings(items []ItemResult) []string {
	var out []string
	for _, it := range items {
		if it.Err != nil {
			out = append(out, it.Err.Error())
		}
	}
	return out
}
