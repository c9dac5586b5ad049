package wwu

import (
	"strconv"
	"strings"

	"github.com/wwisetools/hdrscope/wwise"
)

// containerKinds are the audio object element kinds that can carry Volume
// RTPC curves of their own.
var containerKinds = map[string]bool{
	"ActorMixer":              true,
	"Sound":                   true,
	"RandomSequenceContainer": true,
	"BlendContainer":          true,
	"Bus":                     true,
}

// PreloadVolumeRanges scans the object and bus folders for audio objects
// carrying Volume RTPC curves and returns the volume range keyed by object
// id. Objects with no matching RTPC are absent from the result; that is
// not an error, downstream treats them as having no range.
func (p *Parser) PreloadVolumeRanges() (map[string]wwise.VolumeRange, error) {
	ranges := make(map[string]wwise.VolumeRange)
	for _, folder := range []string{p.ObjectFolder, p.BusFolder} {
		if folder == "" {
			continue
		}
		err := walkWorkUnits(folder, func(path string) {
			root, err := parseFile(path)
			if err != nil {
				p.Log.Warn("skipping unparsable work unit", "path", path, "error", err)
				return
			}
			collectVolumeRanges(root, ranges)
		})
		if err != nil {
			return nil, err
		}
	}
	return ranges, nil
}

func collectVolumeRanges(n *node, out map[string]wwise.VolumeRange) {
	if containerKinds[n.XMLName.Local] {
		if id := n.attr("ID"); id != "" {
			if vr, ok := volumeRangeOf(n); ok {
				out[id] = vr
			}
		}
	}
	for i := range n.Nodes {
		collectVolumeRanges(&n.Nodes[i], out)
	}
}

// volumeRangeOf computes the volume range of a single container element.
// The range spans the Y positions of every curve point on RTPCs bound to
// the Volume property; nested containers keep their own RTPCs.
func volumeRangeOf(container *node) (wwise.VolumeRange, bool) {
	var ys []float64
	for _, rtpc := range ownedRTPCs(container) {
		if name, ok := rtpc.property("PropertyName"); !ok || name != "Volume" {
			continue
		}
		collectCurveYs(rtpc, &ys)
	}
	if len(ys) == 0 {
		return wwise.VolumeRange{}, false
	}

	vr := wwise.VolumeRange{Min: ys[0], Max: ys[0]}
	for _, y := range ys[1:] {
		if y < vr.Min {
			vr.Min = y
		}
		if y > vr.Max {
			vr.Max = y
		}
	}
	if v, ok := container.property("Volume"); ok {
		if f, ok := parseProjectFloat(v); ok {
			vr.Value = f
		}
	}
	return vr, true
}

// ownedRTPCs returns the RTPC elements belonging to this container,
// descending through plain grouping elements but never into a nested
// container.
func ownedRTPCs(container *node) []*node {
	var rtpcs []*node
	var walk func(n *node)
	walk = func(n *node) {
		for i := range n.Nodes {
			c := &n.Nodes[i]
			switch {
			case c.XMLName.Local == "RTPC":
				rtpcs = append(rtpcs, c)
			case containerKinds[c.XMLName.Local]:
				// A nested object's RTPCs are its own.
			default:
				walk(c)
			}
		}
	}
	walk(container)
	return rtpcs
}

// collectCurveYs appends the Y position of every curve point below the
// RTPC element. Values that fail to parse are discarded.
func collectCurveYs(n *node, ys *[]float64) {
	if n.XMLName.Local == "Point" {
		if y, ok := pointY(n); ok {
			*ys = append(*ys, y)
		}
		return
	}
	for i := range n.Nodes {
		collectCurveYs(&n.Nodes[i], ys)
	}
}

func pointY(point *node) (float64, bool) {
	for i := range point.Nodes {
		if point.Nodes[i].XMLName.Local == "YPos" {
			return parseProjectFloat(point.Nodes[i].Text)
		}
	}
	return parseProjectFloat(point.attr("YPos"))
}

// parseProjectFloat parses a float the way the authoring tool writes them:
// some locales persist comma decimal separators, so commas are normalized
// to dots before an invariant parse.
func parseProjectFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
