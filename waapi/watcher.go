package waapi

import (
	"context"
	"time"
)

// DirtyPollInterval is how often the project-dirty flag is polled while
// connected.
const DirtyPollInterval = 500 * time.Millisecond

// A DirtySink receives project dirty-state transitions observed by the
// watcher.
type DirtySink interface {
	SetProjectDirty(dirty bool)
}

// WatchDirty polls the editor's project-dirty flag while the connection
// is up, pushing transitions into the sink. It returns on transport
// error, on disconnect, or when ctx is cancelled; it never retries on its
// own, the caller re-invokes it after reconnecting.
func (c *Client) WatchDirty(ctx context.Context, sink DirtySink) {
	c.watchDirty(ctx, sink, DirtyPollInterval)
}

func (c *Client) watchDirty(ctx context.Context, sink DirtySink, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last bool
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !c.Connected() {
			return
		}
		info, err := c.ProjectInfo(ctx)
		if err != nil {
			c.log.Warn("dirty-state watcher stopped", "error", err)
			return
		}
		if first || info.IsDirty != last {
			sink.SetProjectDirty(info.IsDirty)
			last, first = info.IsDirty, false
		}
	}
}
