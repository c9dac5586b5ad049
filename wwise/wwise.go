// Package wwise defines the project-object model shared by the work-unit
// parser, the authoring-API client and the chart pipeline: buses, events,
// event actions and the inherited color attribution used to group chart
// points into categories.
package wwise

// An Event represents a single Wwise event as reported by the authoring
// API. Events are remote-sourced and immutable after a scan builds them.
type Event struct {
	ID   string
	Name string
	Path string
}

// An Action represents a single action found inside an event work unit.
// Path holds the name of the owning event. TargetID is the de-duplicated
// key used for all subsequent joins; only the first action referencing a
// given target id is retained per scan.
type Action struct {
	ID         string
	Name       string
	Path       string
	TargetID   string
	TargetName string
	Parent     ParentData
}

// A VolumeRange holds the effective volume bounds of an audio object in
// dB. Value is the object's own Volume property; Min and Max are the
// minimum and maximum Y positions across all Volume RTPC curve points
// bound to the object.
type VolumeRange struct {
	Value float64
	Min   float64
	Max   float64
}
