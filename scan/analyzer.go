package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wwisetools/hdrscope/chart"
	"github.com/wwisetools/hdrscope/waapi"
	"github.com/wwisetools/hdrscope/wwise"
	"github.com/wwisetools/hdrscope/wwu"
)

// LargeDatasetThreshold is the point count above which the pipeline
// suspends and asks the operator whether to display everything or start
// with only the first category visible.
const LargeDatasetThreshold = 1000

// ErrUnsupportedVersion is returned when the editor reports a version
// whose project folder layout is unknown.
var ErrUnsupportedVersion = errors.New("scan: unsupported editor version")

// projectFolders names the work-unit sub-folders of a project root. The
// bus folder was renamed between the two supported editor generations.
type projectFolders struct {
	events  string
	objects string
	buses   string
}

var foldersByVersion = map[string]projectFolders{
	"2019": {events: "Events", objects: "Actor-Mixer Hierarchy", buses: "Master-Mixer Hierarchy"},
	"2021": {events: "Events", objects: "Actor-Mixer Hierarchy", buses: "Busses"},
}

// Shell is the narrow surface the pipeline needs from the presentation
// layer: one blocking binary prompt and a modal notice sink.
type Shell interface {
	// Ask blocks on the operator's choice for a large dataset: true to
	// proceed unfiltered, false to start with the default category filter.
	Ask(ctx context.Context, question string) (bool, error)
	// Notify queues a modal notice; later notices queue behind it.
	Notify(message string)
}

// An Analyzer drives one full aggregation pass: fetch buses and events
// remotely, parse the local work units, batch-resolve routing for the
// action targets, keep the HDR-routed actions, group them by event and
// emit the laid-out point set.
type Analyzer struct {
	Client  *waapi.Client
	Session *Session
	Board   *chart.Board
	Shell   Shell
	Log     *slog.Logger
}

// Run executes one scan. Any failure between the remote fetch and the
// grouping stage ends the run without emitting partial chart points; the
// session caches are left as-is so a retry reuses already-fetched data.
func (a *Analyzer) Run(ctx context.Context) error {
	a.Session.Reset()
	a.Board.Clear()

	groups, applyFilter, err := a.aggregate(ctx)
	if err != nil {
		a.Log.Error("scan failed", "error", err)
		a.Shell.Notify("Scan failed: " + err.Error())
		return err
	}

	a.Board.Emit(groups, a.Session)
	if applyFilter {
		a.Board.ShowOnlyFirstCategory()
	}
	a.Board.RecomputeBorder()
	a.Session.MarkAnalyzed()

	points := 0
	for _, g := range groups {
		points += len(g.Actions)
	}
	a.Log.Info("scan complete", "events", len(groups), "points", points)
	return nil
}

func (a *Analyzer) aggregate(ctx context.Context) ([]chart.Group, bool, error) {
	// FetchingRemote: two sequential awaited calls. Empty results are
	// warnings, not failures.
	buses, err := a.Client.Buses(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetching buses: %w", err)
	}
	if len(buses) == 0 {
		a.Log.Warn("editor returned no buses")
	}
	a.Session.SetBuses(buses)

	events, err := a.Client.Events(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetching events: %w", err)
	}
	if len(events) == 0 {
		a.Log.Warn("editor returned no events")
	}
	a.Session.SetEvents(events)

	// ParsingLocal: the project path and version come from the editor,
	// the work units from disk.
	info, err := a.Client.ProjectInfo(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("querying project info: %w", err)
	}
	eventFolder, objectFolder, busFolder, err := projectFolderPaths(info)
	if err != nil {
		return nil, false, err
	}
	a.Session.SetFolders(eventFolder, objectFolder, busFolder)

	parser := &wwu.Parser{
		EventFolder:  eventFolder,
		ObjectFolder: objectFolder,
		BusFolder:    busFolder,
		Log:          a.Log,
	}
	ranges, err := parser.PreloadVolumeRanges()
	if err != nil {
		return nil, false, fmt.Errorf("preloading volume ranges: %w", err)
	}
	a.Session.SetVolumeRanges(ranges)

	actions, err := parser.ParseEventActions()
	if err != nil {
		return nil, false, fmt.Errorf("parsing event actions: %w", err)
	}
	a.Session.SetActions(actions)

	// BatchingTargets: order-preserving distinct non-empty target ids,
	// one batched request for the uncached remainder.
	seen := make(map[string]bool, len(actions))
	var targets []string
	for _, act := range actions {
		if act.TargetID == "" || seen[act.TargetID] {
			continue
		}
		seen[act.TargetID] = true
		targets = append(targets, act.TargetID)
	}
	a.Client.FetchOutputBuses(ctx, a.Session, targets)

	// Filtering: unresolved targets and non-HDR routes drop silently.
	var routed []*wwise.Action
	for _, act := range actions {
		busID, ok := a.Session.CachedOutputBus(act.TargetID)
		if !ok || busID == nil || *busID == "" {
			continue
		}
		if !a.Session.IsHDRRouted(*busID) {
			continue
		}
		routed = append(routed, act)
	}

	groups := a.groupByEvent(routed)

	// LargeDatasetConfirm: the one place the pipeline blocks on the
	// operator. The choice only gates display, never data.
	applyFilter := false
	if len(routed) > LargeDatasetThreshold {
		proceed, err := a.Shell.Ask(ctx, fmt.Sprintf(
			"This scan produced %d points, which may render slowly. Display all of them?",
			len(routed)))
		if err != nil {
			return nil, false, fmt.Errorf("large dataset prompt: %w", err)
		}
		applyFilter = !proceed
	}
	return groups, applyFilter, nil
}

// groupByEvent groups routed actions by their owning event name, keeping
// action order. An event name with no remote record still gets a
// synthetic placeholder so no action is lost.
func (a *Analyzer) groupByEvent(routed []*wwise.Action) []chart.Group {
	var groups []chart.Group
	index := make(map[string]int)
	for _, act := range routed {
		i, ok := index[act.Path]
		if !ok {
			event, found := a.Session.EventByName(act.Path)
			if !found {
				event = &wwise.Event{ID: "{" + uuid.NewString() + "}", Name: act.Path, Path: act.Path}
				a.Log.Warn("no remote record for event, using placeholder", "event", act.Path)
			}
			i = len(groups)
			index[act.Path] = i
			groups = append(groups, chart.Group{Event: event})
		}
		groups[i].Actions = append(groups[i].Actions, act)
	}
	return groups
}

// projectFolderPaths derives the work-unit folder paths from the
// project's file path and the editor's version string.
func projectFolderPaths(info *waapi.ProjectInfo) (event, object, bus string, err error) {
	major := strings.TrimPrefix(strings.TrimSpace(info.Version), "v")
	if i := strings.Index(major, "."); i >= 0 {
		major = major[:i]
	}
	folders, ok := foldersByVersion[major]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, info.Version)
	}
	root := filepath.Dir(info.Path)
	return filepath.Join(root, folders.events),
		filepath.Join(root, folders.objects),
		filepath.Join(root, folders.buses),
		nil
}
