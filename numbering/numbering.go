// Package numbering decides the question number drawn next to each image.
package numbering

import "paper_binder/rules"

// Engine assigns labels by 1-based image position. It carries a running
// counter, so positions must be asked for in ascending order, once each.
type Engine struct {
	overrides map[int]int
	skip      rules.SkipSet
	counter   int
}

// New returns an engine with the counter at zero.
func New(overrides map[int]int, skip rules.SkipSet) *Engine {
	return &Engine{overrides: overrides, skip: skip}
}

// LabelFor returns the label for position and whether one is drawn.
//
// An explicit override always wins. A skipped position gets no label and
// does not consume a counter value. Every other position takes the next
// counter value, starting from 1.
func (e *Engine) LabelFor(position int) (int, bool) {
	if n, ok := e.overrides[position]; ok {
		return n, true
	}
	if e.skip.Contains(position) {
		return 0, false
	}
	e.counter++
	return e.counter, true
}

// Counter returns the last automatic number handed out.
func (e *Engine) Counter() int {
	return e.counter
}
