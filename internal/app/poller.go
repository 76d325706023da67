package app

import (
	"context"
	"log/slog"

	"github.com/apifolio/folio/internal/config"
	"github.com/apifolio/folio/internal/health"
	"github.com/apifolio/folio/internal/httpclient"
	"github.com/apifolio/folio/internal/state"
)

// startPoller launches the health poller against the client's base URL. It
// returns immediately; the caller stops it.
func startPoller(ctx context.Context, client *httpclient.Client, store *state.Store, cfg config.Config, logger *slog.Logger) *health.Poller {
	poller := health.NewPoller(client, "", health.Options{
		Interval: cfg.HealthInterval,
		Timeout:  cfg.RequestTimeout,
		OnUpdate: mirrorHealth(store, cfg.HealthAPIID),
		Logger:   logger,
	})
	poller.Start(ctx)
	return poller
}

// mirrorHealth copies the probe status onto the catalog entry id. Entries the
// catalog marks as under maintenance keep that status.
func mirrorHealth(store *state.Store, id string) func(health.Snapshot) {
	if id == "" {
		return nil
	}
	return func(snap health.Snapshot) {
		api, ok := store.Snapshot().API(id)
		if !ok || api.Status == state.StatusMaintenance || api.Status == snap.Status {
			return
		}
		store.UpdateAPIStatus(id, snap.Status)
	}
}
