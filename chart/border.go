package chart

import (
	"fmt"
	"strings"
)

// RecomputeBorder rescans the visible points for the chart extents.
func (b *Board) RecomputeBorder() {
	b.disp.Send(func() { b.recomputeBorder() })
}

// Border returns the current padded chart extents.
func (b *Board) Border() Border {
	var border Border
	b.disp.Send(func() { border = b.border })
	return border
}

// recomputeBorder scans every visible point, error bar extents included,
// for min/max X and a running min/max Y, then pads the span by a fixed
// fraction on each side.
func (b *Board) recomputeBorder() {
	first := true
	var border Border
	for _, p := range b.points {
		if !p.Category.Visible {
			continue
		}
		x := float64(p.Index) + p.XOffset
		yLow, yHigh := p.RangeMin, p.RangeMax
		if p.Value < yLow {
			yLow = p.Value
		}
		if p.Value > yHigh {
			yHigh = p.Value
		}
		if first {
			border = Border{MinX: x, MaxX: x, MinY: yLow, MaxY: yHigh}
			first = false
			continue
		}
		if x < border.MinX {
			border.MinX = x
		}
		if x > border.MaxX {
			border.MaxX = x
		}
		if yLow < border.MinY {
			border.MinY = yLow
		}
		if yHigh > border.MaxY {
			border.MaxY = yHigh
		}
	}
	if first {
		b.border = Border{}
		return
	}

	padX := (border.MaxX - border.MinX) * borderPadding
	padY := (border.MaxY - border.MinY) * borderPadding
	border.MinX -= padX
	border.MaxX += padX
	border.MinY -= padY
	border.MaxY += padY
	b.border = border
}

// String renders the visible points as a fixed-width table, one row per
// point.
func (b *Board) String() string {
	out := new(strings.Builder)
	b.disp.Send(func() {
		tableParams := []string{"%-6", "%-28", "%-9", "%-9", "%-9", "%-7", "%-20", "\n"}
		titleFmt := strings.Join(tableParams, "s|")
		rowFmt := strings.Join(tableParams, "v|")
		title := fmt.Sprintf(titleFmt,
			"Index", "Name", "Value", "Min", "Max", "Lane", "Category")
		fmt.Fprint(out, title)
		fmt.Fprintln(out, strings.Repeat("-", len(title)-1))

		for _, p := range b.points {
			if !p.Category.Visible {
				continue
			}
			fmt.Fprintf(out, rowFmt,
				p.Index, baseName(p.DisplayName), p.Value, p.RangeMin, p.RangeMax,
				p.XOffset, p.Category.Name())
		}
	})
	return out.String()
}
