package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
)

const lastSyncKey = "sync.last"

type lastSync struct {
	FinishedAt time.Time `json:"finishedAt"`
	Attempted  int       `json:"attempted"`
	Synced     int       `json:"synced"`
	Failed     int       `json:"failed"`
}

// rememberSync keeps the outcome of the latest pass that attempted
// anything, so it survives a restart.
func (a *App) rememberSync(sum models.SyncSummary) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(lastSync{
		FinishedAt: sum.FinishedAt,
		Attempted:  sum.Attempted,
		Synced:     sum.Synced,
		Failed:     sum.Failed,
	})
	if err != nil {
		return
	}
	ctx := context.Background()
	if err := a.cache.SetCacheItem(ctx, lastSyncKey, b); err != nil {
		a.logger.Warn(ctx, "last sync not cached", "error", err)
	}
}

func (a *App) lastSync(ctx context.Context) (*lastSync, bool) {
	if a.cache == nil {
		return nil, false
	}
	e, err := a.cache.GetCacheItem(ctx, lastSyncKey)
	if err != nil {
		return nil, false
	}
	var ls lastSync
	if err := json.Unmarshal(e.Value, &ls); err != nil {
		return nil, false
	}
	return &ls, true
}
