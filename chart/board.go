package chart

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/wwisetools/hdrscope/wwise"
)

// A Board owns the laid-out point set between two scans. Every public
// method redirects through the dispatcher rather than assuming the
// calling goroutine, so shell and pipeline code may call in from
// anywhere. Registered callbacks run on the dispatcher loop and must not
// call back into the board.
type Board struct {
	disp Dispatcher
	log  *slog.Logger

	points     []*Point
	categories []*Category
	overlays   []Overlay
	clickable  int
	dimmed     bool
	border     Border

	onNewCategory func(Category)
	onCleared     func()
}

// NewBoard returns an empty board bound to the given dispatcher.
func NewBoard(disp Dispatcher, log *slog.Logger) *Board {
	return &Board{disp: disp, log: log, clickable: -1}
}

// OnNewCategory registers the callback fired when the first point of a
// previously unseen category is emitted.
func (b *Board) OnNewCategory(fn func(Category)) {
	b.disp.Send(func() { b.onNewCategory = fn })
}

// OnCleared registers the callback fired when the board is cleared at the
// start of a scan.
func (b *Board) OnCleared(fn func()) {
	b.disp.Send(func() { b.onCleared = fn })
}

// Clear drops all points, categories, overlays, the clickable mark and
// the border, and notifies the shell so it can drop its own accumulation.
func (b *Board) Clear() {
	b.disp.Send(func() {
		b.points = nil
		b.categories = nil
		b.overlays = nil
		b.clickable = -1
		b.dimmed = false
		b.border = Border{}
		if b.onCleared != nil {
			b.onCleared()
		}
	})
}

// Emit builds points from the grouped actions, in grouping order (events
// outer, actions inner), lays them out and recomputes the border.
func (b *Board) Emit(groups []Group, ranges RangeSource) {
	b.disp.Send(func() {
		for _, g := range groups {
			for _, a := range g.Actions {
				vr, _ := ranges.VolumeRange(a.TargetID)
				rangeMin := vr.Min
				if rangeMin < MinDisplayVolume {
					rangeMin = MinDisplayVolume
				}
				p := &Point{
					Category:       b.categoryFor(a.Parent),
					Index:          len(b.points),
					Value:          vr.Value,
					RangeMin:       rangeMin,
					RangeMax:       vr.Max,
					DisplayName:    fmt.Sprintf("%s: %.1f", a.TargetName, vr.Value),
					SourceObjectID: a.TargetID,
				}
				b.points = append(b.points, p)
			}
		}
		b.reposition()
		b.recomputeBorder()
	})
}

func (b *Board) categoryFor(parent wwise.ParentData) *Category {
	for _, c := range b.categories {
		if c.Parent.Equal(parent) {
			return c
		}
	}
	c := &Category{Parent: parent, Visible: true}
	b.categories = append(b.categories, c)
	if b.onNewCategory != nil {
		b.onNewCategory(*c)
	}
	return c
}

// Reposition recomputes fan-out offsets over the currently visible
// points. It is idempotent for a fixed point order and visibility set.
func (b *Board) Reposition() {
	b.disp.Send(func() {
		b.reposition()
		b.recomputeBorder()
	})
}

type interval struct {
	min, max float64
}

func (b *Board) reposition() {
	var placed []interval
	for _, p := range b.points {
		if !p.Category.Visible {
			continue
		}
		count := 0
		for _, iv := range placed {
			// Loose on purpose: this counts nearly every prior interval
			// rather than testing strict intersection. The shipped layout
			// was tuned against exactly this behavior, so it stays.
			if p.RangeMin <= iv.max || p.RangeMax >= iv.min {
				count++
			}
		}
		p.XOffset = float64(count) * offsetDirection
		placed = append(placed, interval{min: p.RangeMin, max: p.RangeMax})
	}
	b.syncOverlays()
}

// syncOverlays re-clones each overlay from its backing point and mirrors
// the backing category's visibility, then re-evaluates dimming: defaults
// are dimmed exactly while at least one overlay is visible.
func (b *Board) syncOverlays() {
	anyVisible := false
	for i := range b.overlays {
		src := b.points[b.overlays[i].PointIndex]
		b.overlays[i].Point = *src
		b.overlays[i].Visible = src.Category.Visible
		if src.Category.Visible {
			anyVisible = true
		}
	}
	b.dimmed = anyVisible
}

// SetCategoryVisible toggles one category and re-lays-out considering
// only visible points.
func (b *Board) SetCategoryVisible(name string, visible bool) {
	b.disp.Send(func() {
		for _, c := range b.categories {
			if strings.EqualFold(c.Parent.Name, name) {
				c.Visible = visible
			}
		}
		b.reposition()
		b.recomputeBorder()
	})
}

// ShowOnlyFirstCategory hides every category but the first discovered
// one. Used when the operator answers a large-dataset prompt with "apply
// filter"; no point data is lost, only gated from display.
func (b *Board) ShowOnlyFirstCategory() {
	b.disp.Send(func() {
		for i, c := range b.categories {
			c.Visible = i == 0
		}
		b.reposition()
		b.recomputeBorder()
	})
}

// AddHighlight clones every point whose display name matches (after
// trimming the ": value" suffix) into the overlay layer and returns how
// many matched. The first highlight dims all default points.
func (b *Board) AddHighlight(name string) int {
	added := 0
	b.disp.Send(func() {
		for _, p := range b.points {
			if baseName(p.DisplayName) != name {
				continue
			}
			b.overlays = append(b.overlays, Overlay{
				PointIndex: p.Index,
				Point:      *p,
				Visible:    p.Category.Visible,
			})
			added++
		}
		b.syncOverlays()
	})
	return added
}

// RemoveHighlight drops the overlays for one display name; full
// brightness returns when the last visible overlay goes.
func (b *Board) RemoveHighlight(name string) {
	b.disp.Send(func() {
		kept := b.overlays[:0]
		for _, ov := range b.overlays {
			if baseName(ov.Point.DisplayName) != name {
				kept = append(kept, ov)
			}
		}
		b.overlays = kept
		b.syncOverlays()
	})
}

// ClearHighlights drops every overlay and restores full brightness.
func (b *Board) ClearHighlights() {
	b.disp.Send(func() {
		b.overlays = nil
		b.dimmed = false
	})
}

// baseName strips the ": value" suffix from a point display name.
func baseName(display string) string {
	if i := strings.LastIndex(display, ": "); i >= 0 {
		return display[:i]
	}
	return display
}

// SetClickable marks one point as the click target, silently clearing
// any previous mark. An out-of-range index only clears.
func (b *Board) SetClickable(index int) {
	b.disp.Send(func() {
		if index < 0 || index >= len(b.points) {
			b.clickable = -1
			return
		}
		b.clickable = index
	})
}

// Clickable returns the currently clickable point index, -1 when none.
func (b *Board) Clickable() int {
	var idx int
	b.disp.Send(func() { idx = b.clickable })
	return idx
}

// Dimmed reports whether default points are currently dimmed behind a
// highlight.
func (b *Board) Dimmed() bool {
	var d bool
	b.disp.Send(func() { d = b.dimmed })
	return d
}

// Points returns a value snapshot of every point, visible or not.
func (b *Board) Points() []Point {
	var out []Point
	b.disp.Send(func() {
		out = make([]Point, len(b.points))
		for i, p := range b.points {
			out[i] = *p
		}
	})
	return out
}

// Overlays returns a value snapshot of the highlight layer.
func (b *Board) Overlays() []Overlay {
	var out []Overlay
	b.disp.Send(func() {
		out = append(out, b.overlays...)
	})
	return out
}

// Categories returns a value snapshot of the discovered categories in
// discovery order.
func (b *Board) Categories() []Category {
	var out []Category
	b.disp.Send(func() {
		out = make([]Category, len(b.categories))
		for i, c := range b.categories {
			out[i] = *c
		}
	})
	return out
}
