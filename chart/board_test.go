package chart

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwisetools/hdrscope/wwise"
)

// syncDispatcher runs board mutations inline; tests have no UI loop.
type syncDispatcher struct{}

func (syncDispatcher) Send(fn func()) { fn() }

type mapRanges map[string]wwise.VolumeRange

func (m mapRanges) VolumeRange(id string) (wwise.VolumeRange, bool) {
	vr, ok := m[id]
	return vr, ok
}

func testBoard() *Board {
	return NewBoard(syncDispatcher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func groupOf(event string, actions ...*wwise.Action) Group {
	return Group{
		Event:   &wwise.Event{ID: "{EV-" + event + "}", Name: event, Path: event},
		Actions: actions,
	}
}

func TestEmitClampsLowerBoundToSilenceFloor(t *testing.T) {
	b := testBoard()
	parent := wwise.DefaultParent()
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "deep", "Deep", parent),
		wwise.TestAction("E", "mid", "Mid", parent),
	)}, mapRanges{
		"deep": {Value: -120, Min: -150, Max: -150},
		"mid":  {Value: -20, Min: -50, Max: -10},
	})

	pts := b.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, -96.0, pts[0].RangeMin, "ranges below the floor are clamped")
	assert.Equal(t, -150.0, pts[0].RangeMax, "the upper bound is never clamped")
	assert.Equal(t, -50.0, pts[1].RangeMin, "ranges above the floor pass through")
}

func TestEmitDefaultsMissingRangeToZero(t *testing.T) {
	b := testBoard()
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "unknown", "Unknown", wwise.DefaultParent()),
	)}, mapRanges{})

	pts := b.Points()
	require.Len(t, pts, 1)
	assert.Zero(t, pts[0].Value)
	assert.Zero(t, pts[0].RangeMin)
	assert.Zero(t, pts[0].RangeMax)
}

func TestOverlapCountingUsesLoosePredicate(t *testing.T) {
	b := testBoard()
	parent := wwise.DefaultParent()
	// The two ranges are strictly disjoint. The shipped predicate still
	// counts the first against the second, so the second point moves one
	// lane over.
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", parent),
		wwise.TestAction("E", "b", "B", parent),
	)}, mapRanges{
		"a": {Value: 5, Min: 0, Max: 10},
		"b": {Value: 25, Min: 20, Max: 30},
	})

	pts := b.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, 0.0, pts[0].XOffset)
	assert.Equal(t, 1.0, pts[1].XOffset)
}

func TestRepositionIsIdempotent(t *testing.T) {
	b := testBoard()
	parent := wwise.DefaultParent()
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", parent),
		wwise.TestAction("E", "b", "B", parent),
		wwise.TestAction("E", "c", "C", parent),
	)}, mapRanges{
		"a": {Value: -5, Min: -10, Max: 0},
		"b": {Value: -6, Min: -12, Max: -2},
		"c": {Value: -1, Min: -3, Max: 1},
	})

	first := b.Points()
	b.Reposition()
	b.Reposition()
	second := b.Points()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].XOffset, second[i].XOffset, "point %d moved", i)
	}
}

func TestCategoriesGroupByParentEquality(t *testing.T) {
	b := testBoard()
	guns := wwise.ParentData{Name: "Guns", Color: wwise.ColorFromIndex(3)}
	gunsUpper := wwise.ParentData{Name: "GUNS", Color: wwise.ColorFromIndex(3)}
	other := wwise.ParentData{Name: "Guns", Color: wwise.ColorFromIndex(4)}

	var discovered []string
	b.OnNewCategory(func(c Category) { discovered = append(discovered, c.Parent.Name) })

	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", guns),
		wwise.TestAction("E", "b", "B", gunsUpper),
		wwise.TestAction("E", "c", "C", other),
	)}, mapRanges{})

	cats := b.Categories()
	require.Len(t, cats, 2, "case-insensitive names with equal colors share a category")
	assert.Equal(t, []string{"Guns", "Guns"}, discovered,
		"the callback fires once per discovered category")
}

func TestVisibilityToggleRecomputesOffsetsOverVisibleOnly(t *testing.T) {
	b := testBoard()
	guns := wwise.ParentData{Name: "Guns", Color: wwise.ColorFromIndex(3)}
	amb := wwise.ParentData{Name: "Ambience", Color: wwise.ColorFromIndex(7)}
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", guns),
		wwise.TestAction("E", "b", "B", amb),
		wwise.TestAction("E", "c", "C", guns),
	)}, mapRanges{
		"a": {Min: -10, Max: 0},
		"b": {Min: -10, Max: 0},
		"c": {Min: -10, Max: 0},
	})

	pts := b.Points()
	require.Equal(t, 2.0, pts[2].XOffset, "all three points occupy lanes at first")

	b.SetCategoryVisible("Ambience", false)
	pts = b.Points()
	assert.Equal(t, 1.0, pts[2].XOffset, "hidden points no longer claim lanes")

	b.SetCategoryVisible("Ambience", true)
	pts = b.Points()
	assert.Equal(t, 2.0, pts[2].XOffset)
}

func TestHighlightDimsDefaultsAndTracksBackingPoint(t *testing.T) {
	b := testBoard()
	guns := wwise.ParentData{Name: "Guns", Color: wwise.ColorFromIndex(3)}
	amb := wwise.ParentData{Name: "Ambience", Color: wwise.ColorFromIndex(7)}
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "Gun_Shot", guns),
		wwise.TestAction("E", "b", "Wind", amb),
	)}, mapRanges{
		"a": {Value: -5, Min: -10, Max: 0},
		"b": {Value: -7, Min: -12, Max: -1},
	})

	require.False(t, b.Dimmed())
	added := b.AddHighlight("Gun_Shot")
	require.Equal(t, 1, added)
	assert.True(t, b.Dimmed(), "the first highlight dims defaults")

	// Hiding the backing category re-syncs the overlay and un-dims.
	b.SetCategoryVisible("Guns", false)
	ovs := b.Overlays()
	require.Len(t, ovs, 1)
	assert.False(t, ovs[0].Visible)
	assert.False(t, b.Dimmed(), "no visible highlight, no dimming")

	b.SetCategoryVisible("Guns", true)
	ovs = b.Overlays()
	assert.True(t, ovs[0].Visible)
	assert.Equal(t, b.Points()[ovs[0].PointIndex].XOffset, ovs[0].Point.XOffset,
		"the overlay mirrors its backing point after re-layout")

	b.RemoveHighlight("Gun_Shot")
	assert.False(t, b.Dimmed(), "removing the last highlight restores brightness")
	assert.Empty(t, b.Overlays())
}

func TestClickableIsSingleSlot(t *testing.T) {
	b := testBoard()
	parent := wwise.DefaultParent()
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", parent),
		wwise.TestAction("E", "b", "B", parent),
	)}, mapRanges{})

	require.Equal(t, -1, b.Clickable())
	b.SetClickable(0)
	require.Equal(t, 0, b.Clickable())
	b.SetClickable(1)
	assert.Equal(t, 1, b.Clickable(), "setting a new clickable clears the previous")
	b.SetClickable(99)
	assert.Equal(t, -1, b.Clickable())
}

func TestShowOnlyFirstCategory(t *testing.T) {
	b := testBoard()
	guns := wwise.ParentData{Name: "Guns", Color: wwise.ColorFromIndex(3)}
	amb := wwise.ParentData{Name: "Ambience", Color: wwise.ColorFromIndex(7)}
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", guns),
		wwise.TestAction("E", "b", "B", amb),
	)}, mapRanges{})

	b.ShowOnlyFirstCategory()
	cats := b.Categories()
	require.Len(t, cats, 2)
	assert.True(t, cats[0].Visible)
	assert.False(t, cats[1].Visible)
}

func TestBorderCoversErrorBarsWithPadding(t *testing.T) {
	b := testBoard()
	parent := wwise.DefaultParent()
	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "A", parent),
		wwise.TestAction("E", "b", "B", parent),
	)}, mapRanges{
		"a": {Value: -5, Min: -20, Max: 0},
		"b": {Value: -8, Min: -40, Max: -2},
	})

	border := b.Border()
	// Y spans -40..0 plus 5% padding on each side.
	assert.InDelta(t, -42.0, border.MinY, 1e-9)
	assert.InDelta(t, 2.0, border.MaxY, 1e-9)
	assert.Less(t, border.MinX, border.MaxX)
}

func TestClearDropsEverythingAndNotifies(t *testing.T) {
	b := testBoard()
	cleared := false
	b.OnCleared(func() { cleared = true })

	b.Emit([]Group{groupOf("E",
		wwise.TestAction("E", "a", "Gun_Shot", wwise.DefaultParent()),
	)}, mapRanges{})
	b.AddHighlight("Gun_Shot")
	b.SetClickable(0)

	b.Clear()
	assert.True(t, cleared)
	assert.Empty(t, b.Points())
	assert.Empty(t, b.Categories())
	assert.Empty(t, b.Overlays())
	assert.Equal(t, -1, b.Clickable())
	assert.False(t, b.Dimmed())
}
