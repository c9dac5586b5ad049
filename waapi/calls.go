package waapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wwisetools/hdrscope/wwise"
)

// Authoring-API methods consumed by this tool.
const (
	methodObjectGet         = "ak.wwise.core.object.get"
	methodGetProjectInfo    = "ak.wwise.core.getProjectInfo"
	methodBringToForeground = "ak.wwise.ui.bringToForeground"
	methodCommandsExecute   = "ak.wwise.ui.commands.execute"
)

// UI commands issued through the editor's command surface.
const (
	CommandFindInProjectExplorer = "FindInProjectExplorerSyncGroup1"
	CommandInspect               = "Inspect"
)

// ProjectInfo describes the currently open project.
type ProjectInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Version string `json:"version"`
	IsDirty bool   `json:"isDirty"`
}

// Buses fetches every routing bus in one request and derives the
// HDR-child flag client-side from the returned path hierarchy.
func (c *Client) Buses(ctx context.Context) ([]*wwise.Bus, error) {
	args := map[string]any{"from": map[string]any{"ofType": []string{"Bus"}}}
	options := map[string]any{"return": []string{"id", "name", "path", "HdrEnable"}}
	raw, err := c.Call(ctx, methodObjectGet, args, options)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Path      string `json:"path"`
		HdrEnable bool   `json:"HdrEnable"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("waapi: decoding bus list: %w", err)
	}

	buses := make([]*wwise.Bus, 0, len(rows))
	for _, r := range rows {
		buses = append(buses, &wwise.Bus{ID: r.ID, Name: r.Name, Path: r.Path, HDR: r.HdrEnable})
	}
	wwise.DeriveHDRChildren(buses)
	return buses, nil
}

// Events fetches every event in one request.
func (c *Client) Events(ctx context.Context) ([]*wwise.Event, error) {
	args := map[string]any{"from": map[string]any{"ofType": []string{"Event"}}}
	options := map[string]any{"return": []string{"id", "name", "path"}}
	raw, err := c.Call(ctx, methodObjectGet, args, options)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("waapi: decoding event list: %w", err)
	}

	events := make([]*wwise.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, &wwise.Event{ID: r.ID, Name: r.Name, Path: r.Path})
	}
	return events, nil
}

// An OutputBusCache memoizes the resolved output bus per object id. A nil
// bus id records "fetched, no answer" so the id is never requested again
// within the session.
type OutputBusCache interface {
	CachedOutputBus(objectID string) (busID *string, ok bool)
	StoreOutputBus(objectID string, busID *string)
}

// FetchOutputBuses resolves the OutputBus attribute for the given object
// ids. Ids already present in the cache are filtered out; the remainder
// is fetched with exactly one batched request (an empty remainder issues
// none). Ids absent from the result, and every requested id when the
// whole call fails, are cached with the nil sentinel. Failure is
// non-fatal: it is logged and the caller proceeds with whatever is
// cached.
func (c *Client) FetchOutputBuses(ctx context.Context, cache OutputBusCache, ids []string) {
	var missing []string
	for _, id := range ids {
		if _, ok := cache.CachedOutputBus(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return
	}

	args := map[string]any{"from": map[string]any{"id": missing}}
	options := map[string]any{"return": []string{"id", "OutputBus"}}
	raw, err := c.Call(ctx, methodObjectGet, args, options)
	if err != nil {
		c.log.Warn("output bus batch fetch failed", "requested", len(missing), "error", err)
		for _, id := range missing {
			cache.StoreOutputBus(id, nil)
		}
		return
	}

	var rows []struct {
		ID        string `json:"id"`
		OutputBus *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"OutputBus"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.log.Warn("output bus batch fetch returned malformed rows", "error", err)
		for _, id := range missing {
			cache.StoreOutputBus(id, nil)
		}
		return
	}

	resolved := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.OutputBus != nil {
			resolved[r.ID] = r.OutputBus.ID
		}
	}
	for _, id := range missing {
		if busID, ok := resolved[id]; ok {
			busID := busID
			cache.StoreOutputBus(id, &busID)
		} else {
			cache.StoreOutputBus(id, nil)
		}
	}
}

// ProjectInfo queries the editor for the open project's name, file-system
// path, version string and dirty flag.
func (c *Client) ProjectInfo(ctx context.Context) (*ProjectInfo, error) {
	raw, err := c.Call(ctx, methodGetProjectInfo, nil, nil)
	if err != nil {
		return nil, err
	}
	info := new(ProjectInfo)
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("waapi: decoding project info: %w", err)
	}
	return info, nil
}

// BringToForeground raises the editor's main window.
func (c *Client) BringToForeground(ctx context.Context) error {
	_, err := c.Call(ctx, methodBringToForeground, nil, nil)
	return err
}

// ExecuteCommand runs one of the editor's UI commands against a set of
// objects.
func (c *Client) ExecuteCommand(ctx context.Context, command string, objectIDs []string) error {
	args := map[string]any{"command": command}
	if len(objectIDs) > 0 {
		args["objects"] = objectIDs
	}
	_, err := c.Call(ctx, methodCommandsExecute, args, nil)
	return err
}

// Reveal focuses an object in the editor: bring the window to the
// foreground, select the object in the Project Explorer, then inspect it.
// The three calls run sequentially; the first failure aborts the rest.
func (c *Client) Reveal(ctx context.Context, objectID string) error {
	if err := c.BringToForeground(ctx); err != nil {
		return err
	}
	if err := c.ExecuteCommand(ctx, CommandFindInProjectExplorer, []string{objectID}); err != nil {
		return err
	}
	return c.ExecuteCommand(ctx, CommandInspect, []string{objectID})
}
