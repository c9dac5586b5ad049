// Shared test fixtures for packages operating on the project-object model.
package wwise

import "fmt"

// TestBus builds a bus fixture whose id is derived from its name.
func TestBus(name, path string, hdr bool) *Bus {
	return &Bus{
		ID:   fmt.Sprintf("{BUS-%s}", name),
		Name: name,
		Path: path,
		HDR:  hdr,
	}
}

// TestAction builds an action fixture owned by the named event.
func TestAction(event, targetID, targetName string, parent ParentData) *Action {
	return &Action{
		ID:         fmt.Sprintf("{ACT-%s-%s}", event, targetID),
		Name:       "Play",
		Path:       event,
		TargetID:   targetID,
		TargetName: targetName,
		Parent:     parent,
	}
}
