// Package scan owns the per-scan session state and the aggregation
// pipeline that joins locally parsed work-unit data with remotely fetched
// routing data into the chart's point set.
package scan

import (
	"sync"

	"github.com/wwisetools/hdrscope/wwise"
)

// A Session holds every cache produced by one scan: the resolved output
// bus per object id, the volume range per object id, the bus and event
// sets, the de-duplicated action list and the project dirty/stale flags.
// It is shared by the parser, the client and the layout engine for the
// lifetime of the process and reset as a whole before each scan; partial
// resets would corrupt the next scan's joins.
//
// Writers are individually awaited by the pipeline, but shell code reads
// concurrently while a scan finishes, so all access goes through one
// RWMutex.
type Session struct {
	mu sync.RWMutex

	eventFolder  string
	objectFolder string
	busFolder    string

	buses        []*wwise.Bus
	hdrBusIDs    map[string]bool
	eventsByName map[string]*wwise.Event
	actions      []*wwise.Action

	outputBus map[string]*string
	volumes   map[string]wwise.VolumeRange

	projectDirty bool
	stale        bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	s := new(Session)
	s.clearLocked()
	return s
}

// Reset atomically clears every cache and the parser folder
// configuration. The dirty flag survives; it mirrors editor state, not
// scan state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.eventFolder = ""
	s.objectFolder = ""
	s.busFolder = ""
	s.buses = nil
	s.hdrBusIDs = make(map[string]bool)
	s.eventsByName = make(map[string]*wwise.Event)
	s.actions = nil
	s.outputBus = make(map[string]*string)
	s.volumes = make(map[string]wwise.VolumeRange)
}

// SetFolders records the per-scan work-unit folders.
func (s *Session) SetFolders(event, object, bus string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventFolder, s.objectFolder, s.busFolder = event, object, bus
}

// Folders returns the configured work-unit folders.
func (s *Session) Folders() (event, object, bus string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventFolder, s.objectFolder, s.busFolder
}

// SetBuses stores the scan's bus set and precomputes the HDR-routed id
// set used for filtering. Deriving the HDR-child flags here is idempotent,
// so bus sets that already carry them are unaffected.
func (s *Session) SetBuses(buses []*wwise.Bus) {
	wwise.DeriveHDRChildren(buses)
	ids := wwise.HDRBusIDs(buses)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buses = buses
	s.hdrBusIDs = ids
}

// Buses returns the scan's bus set.
func (s *Session) Buses() []*wwise.Bus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*wwise.Bus(nil), s.buses...)
}

// IsHDRRouted reports whether a bus id belongs to the HDR-or-HDR-child
// set.
func (s *Session) IsHDRRouted(busID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hdrBusIDs[busID]
}

// SetEvents indexes the scan's remote event set by name.
func (s *Session) SetEvents(events []*wwise.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventsByName = make(map[string]*wwise.Event, len(events))
	for _, e := range events {
		s.eventsByName[e.Name] = e
	}
}

// EventByName looks an event up by its join key.
func (s *Session) EventByName(name string) (*wwise.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.eventsByName[name]
	return e, ok
}

// SetActions stores the de-duplicated action list.
func (s *Session) SetActions(actions []*wwise.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = actions
}

// Actions returns the de-duplicated action list.
func (s *Session) Actions() []*wwise.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*wwise.Action(nil), s.actions...)
}

// CachedOutputBus implements waapi.OutputBusCache.
func (s *Session) CachedOutputBus(objectID string) (*string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	busID, ok := s.outputBus[objectID]
	return busID, ok
}

// StoreOutputBus implements waapi.OutputBusCache. Entries are only ever
// removed by Reset.
func (s *Session) StoreOutputBus(objectID string, busID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputBus[objectID] = busID
}

// SetVolumeRanges replaces the volume-range cache.
func (s *Session) SetVolumeRanges(ranges map[string]wwise.VolumeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = ranges
}

// VolumeRange implements chart.RangeSource.
func (s *Session) VolumeRange(objectID string) (wwise.VolumeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vr, ok := s.volumes[objectID]
	return vr, ok
}

// SetProjectDirty implements waapi.DirtySink. A transition to dirty also
// marks the session stale since the last analysis.
func (s *Session) SetProjectDirty(dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dirty && !s.projectDirty {
		s.stale = true
	}
	s.projectDirty = dirty
}

// ProjectDirty reports the editor's last observed dirty flag.
func (s *Session) ProjectDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectDirty
}

// MarkStale flags that project data changed since the last analysis.
func (s *Session) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// Stale reports whether project data changed since the last analysis.
func (s *Session) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// MarkAnalyzed clears the stale flag after a completed analysis.
func (s *Session) MarkAnalyzed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = false
}
