// Package wwu implements read-only access to Wwise work-unit XML files.
// It extracts event actions together with their inherited color
// attribution, and the per-object volume ranges carried by Volume RTPC
// curves.
package wwu

import (
	"encoding/xml"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wwisetools/hdrscope/wwise"
)

// The file extension used by the authoring tool for work units.
const workUnitExtension = ".wwu"

// A Parser extracts project data from a set of work-unit folders. It is
// read-only over the filesystem and holds only the folder paths as per-scan
// configuration; a fresh Parser is constructed for every scan.
type Parser struct {
	// EventFolder holds the event hierarchy work units.
	EventFolder string
	// ObjectFolder holds the audio object hierarchy work units.
	ObjectFolder string
	// BusFolder holds the bus hierarchy work units.
	BusFolder string

	Log *slog.Logger
}

// node is a generic element of a parsed work-unit document. Work units
// nest containers arbitrarily deep, so the document is decoded into a
// uniform tree and walked top-down with an explicit ancestor stack.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// property looks up a named entry in the node's immediate PropertyList.
func (n *node) property(name string) (string, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local != "PropertyList" {
			continue
		}
		for j := range n.Nodes[i].Nodes {
			p := &n.Nodes[i].Nodes[j]
			if p.XMLName.Local == "Property" && p.attr("Name") == name {
				return p.attr("Value"), true
			}
		}
	}
	return "", false
}

// colorFrame captures the color-relevant state of one ancestor element
// during a top-down walk.
type colorFrame struct {
	name     string
	override bool
	hasColor bool
	color    wwise.Color
}

func frameOf(n *node) colorFrame {
	f := colorFrame{name: n.attr("Name")}
	if v, ok := n.property("OverrideColor"); ok {
		f.override = strings.EqualFold(v, "true") || v == "1"
	}
	if v, ok := n.property("Color"); ok {
		if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			f.hasColor = true
			f.color = wwise.ColorFromIndex(idx)
		}
	}
	return f
}

// resolveParent finds the category for an element given its ancestor
// stack, nearest ancestor last. The nearest ancestor carrying a Color
// property supplies the color and ends the walk; its name is only used
// when it also sets OverrideColor, otherwise the owner is reported as the
// sentinel. The two lookups are deliberately asymmetric and must not be
// unified.
func resolveParent(stack []colorFrame) wwise.ParentData {
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].hasColor {
			continue
		}
		if stack[i].override {
			return wwise.ParentData{Name: stack[i].name, Color: stack[i].color}
		}
		return wwise.ParentData{Name: wwise.NoExplicitOwner, Color: stack[i].color}
	}
	return wwise.DefaultParent()
}

// ParseEventActions walks every work unit under the parser's event folder
// and returns one action per distinct target id, in file-enumeration then
// document order. Later references to an already-seen target are dropped.
// Files that fail to parse are logged and skipped; the scan never aborts
// for one bad file.
func (p *Parser) ParseEventActions() ([]*wwise.Action, error) {
	var actions []*wwise.Action
	seen := make(map[string]bool)

	err := walkWorkUnits(p.EventFolder, func(path string) {
		root, err := parseFile(path)
		if err != nil {
			p.Log.Warn("skipping unparsable work unit", "path", path, "error", err)
			return
		}
		collectActions(root, nil, "", func(a *wwise.Action) {
			if a.TargetID == "" || seen[a.TargetID] {
				return
			}
			seen[a.TargetID] = true
			actions = append(actions, a)
		})
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// collectActions walks the document tree, maintaining the ancestor color
// stack and the name of the innermost enclosing event, and emits an action
// for every Action element with a resolvable target reference.
func collectActions(n *node, stack []colorFrame, event string, emit func(*wwise.Action)) {
	stack = append(stack, frameOf(n))

	if n.XMLName.Local == "Event" {
		event = n.attr("Name")
	}
	if n.XMLName.Local == "Action" {
		if ref := targetRef(n); ref != nil {
			emit(&wwise.Action{
				ID:         n.attr("ID"),
				Name:       n.attr("Name"),
				Path:       event,
				TargetID:   ref.attr("ID"),
				TargetName: ref.attr("Name"),
				Parent:     resolveParent(stack),
			})
		}
	}

	for i := range n.Nodes {
		collectActions(&n.Nodes[i], stack, event, emit)
	}
}

// targetRef locates the Reference[@Name="Target"]/ObjectRef child of an
// Action element, searching one list level deep as the schema nests
// references inside a ReferenceList.
func targetRef(action *node) *node {
	for i := range action.Nodes {
		for _, ref := range referenceNodes(&action.Nodes[i]) {
			if ref.attr("Name") != "Target" {
				continue
			}
			for j := range ref.Nodes {
				if ref.Nodes[j].XMLName.Local == "ObjectRef" {
					return &ref.Nodes[j]
				}
			}
		}
	}
	return nil
}

func referenceNodes(n *node) []*node {
	if n.XMLName.Local == "Reference" {
		return []*node{n}
	}
	if n.XMLName.Local != "ReferenceList" {
		return nil
	}
	refs := make([]*node, 0, len(n.Nodes))
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == "Reference" {
			refs = append(refs, &n.Nodes[i])
		}
	}
	return refs
}

// walkWorkUnits invokes visit for every .wwu file under folder,
// recursively, in lexical order.
func walkWorkUnits(folder string, visit func(path string)) error {
	return filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), workUnitExtension) {
			return nil
		}
		visit(path)
		return nil
	})
}

func parseFile(path string) (*node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root := new(node)
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, err
	}
	return root, nil
}
