package wwise

import "strings"

// NoExplicitOwner is the name reported for a parent category whose color
// was inherited from an ancestor that does not explicitly override it, or
// when no ancestor carries a color at all.
const NoExplicitOwner = "<no owner>"

// A Color is an ARGB color as displayed by the authoring tool.
type Color struct {
	A uint8
	R uint8
	G uint8
	B uint8
}

// NeutralGray is the color assigned to objects with no colored ancestor.
var NeutralGray = Color{A: 255, R: 128, G: 128, B: 128}

// palette maps the authoring tool's Color property index to the ARGB value
// it renders with. Indices outside the palette fall back to NeutralGray.
var palette = []Color{
	{255, 83, 83, 83},    // 0: default gray
	{255, 119, 86, 86},   // 1
	{255, 151, 83, 61},   // 2
	{255, 171, 113, 60},  // 3
	{255, 152, 136, 38},  // 4
	{255, 116, 133, 42},  // 5
	{255, 82, 132, 60},   // 6
	{255, 67, 133, 103},  // 7
	{255, 66, 118, 139},  // 8
	{255, 80, 116, 163},  // 9
	{255, 104, 104, 180}, // 10
	{255, 133, 93, 175},  // 11
	{255, 159, 87, 156},  // 12
	{255, 166, 84, 120},  // 13
	{255, 128, 128, 128}, // 14: mid gray
	{255, 189, 117, 117}, // 15
	{255, 210, 130, 96},  // 16
	{255, 225, 156, 90},  // 17
	{255, 212, 196, 83},  // 18
	{255, 167, 188, 87},  // 19
	{255, 122, 187, 99},  // 20
	{255, 102, 187, 149}, // 21
	{255, 98, 168, 196},  // 22
	{255, 121, 164, 224}, // 23
	{255, 150, 150, 241}, // 24
	{255, 186, 139, 235}, // 25
	{255, 219, 128, 214}, // 26
}

// ColorFromIndex resolves a Color property index to its display color.
func ColorFromIndex(i int) Color {
	if i < 0 || i >= len(palette) {
		return NeutralGray
	}
	return palette[i]
}

// ParentData identifies the nearest ancestor that supplied an object's
// display color. It doubles as the chart category key: two values are
// equal iff their names match case-insensitively and all four color
// channels match exactly.
type ParentData struct {
	Name  string
	Color Color
}

// DefaultParent is the category for objects with no colored ancestor.
func DefaultParent() ParentData {
	return ParentData{Name: NoExplicitOwner, Color: NeutralGray}
}

// Equal reports whether p and o name the same category.
func (p ParentData) Equal(o ParentData) bool {
	return strings.EqualFold(p.Name, o.Name) && p.Color == o.Color
}
