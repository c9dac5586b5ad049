// Package chart converts grouped event actions into a laid-out scatter
// point set: one point per routed action, with volume error bars,
// category grouping by inherited color, horizontal fan-out of overlapping
// ranges, highlight overlays and chart extents.
package chart

import (
	"github.com/wwisetools/hdrscope/wwise"
)

// MinDisplayVolume is the display floor in dB. Ranges below it are
// clamped up: anything quieter is effective silence. The upper bound is
// never clamped.
const MinDisplayVolume = -96.0

// offsetDirection is the fixed horizontal direction overlapping points
// fan out in.
const offsetDirection = 1.0

// borderPadding is the fraction of the plotted span added around the
// chart extents.
const borderPadding = 0.05

// A Group pairs one event with its HDR-routed actions, in the stable
// order produced by the aggregation pipeline.
type Group struct {
	Event   *wwise.Event
	Actions []*wwise.Action
}

// A Category is one chart series: all points sharing an equal ParentData
// per the category equality rule. Toggling Visible drives re-layout.
type Category struct {
	Parent  wwise.ParentData
	Visible bool
}

// Name returns the category's display name.
func (c *Category) Name() string { return c.Parent.Name }

// A Point is one plotted action target. Index is its stable horizontal
// base coordinate; XOffset the fan-out lane added to it. RangeMin and
// RangeMax come from raw RTPC data and are not guaranteed to bracket
// Value.
type Point struct {
	Category       *Category
	Index          int
	Value          float64
	RangeMin       float64
	RangeMax       float64
	XOffset        float64
	DisplayName    string
	SourceObjectID string
}

// An Overlay is a highlight clone of a default point. The backing point
// is referenced by index, not pointer, so re-layout re-syncs the pair.
type Overlay struct {
	PointIndex int
	Point      Point
	Visible    bool
}

// Border holds the chart extents, padded.
type Border struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// A RangeSource resolves the volume range cached for an object id.
// Objects without a range report ok=false and plot as a zero range.
type RangeSource interface {
	VolumeRange(objectID string) (wwise.VolumeRange, bool)
}

// A Dispatcher marshals board mutations onto the UI event loop. Send runs
// fn on the loop and waits for it to finish.
type Dispatcher interface {
	Send(fn func())
}
