package wwise

import "strings"

// A Bus represents a single audio routing bus as reported by the
// authoring API. HDR marks a bus with HDR dynamics enabled; HDRChild
// marks a bus that sits anywhere below an HDR bus in the routing
// hierarchy. A bus that is itself HDR is never also flagged HDRChild.
// Buses are built once per scan and immutable afterwards.
type Bus struct {
	ID       string
	Name     string
	Path     string
	HDR      bool
	HDRChild bool
}

// DeriveHDRChildren computes the HDRChild flag for every bus in the set.
// The bus hierarchy is inferred from the backslash-delimited Path strings:
// a bus is an HDR child when any strict ancestor path belongs to an HDR
// bus. The set is modified in place.
func DeriveHDRChildren(buses []*Bus) {
	hdrByPath := make(map[string]bool, len(buses))
	for _, b := range buses {
		if b.HDR {
			hdrByPath[b.Path] = true
		}
	}
	for _, b := range buses {
		if b.HDR {
			continue
		}
		for path := parentPath(b.Path); path != ""; path = parentPath(path) {
			if hdrByPath[path] {
				b.HDRChild = true
				break
			}
		}
	}
}

// parentPath strips the last backslash-delimited segment from a bus path.
// Returns "" once the root is reached.
func parentPath(path string) string {
	i := strings.LastIndex(path, `\`)
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// HDRBusIDs returns the set of bus ids that are HDR or HDR children. An
// action routed to any bus in this set is considered HDR-routed.
func HDRBusIDs(buses []*Bus) map[string]bool {
	ids := make(map[string]bool)
	for _, b := range buses {
		if b.HDR || b.HDRChild {
			ids[b.ID] = true
		}
	}
	return ids
}
