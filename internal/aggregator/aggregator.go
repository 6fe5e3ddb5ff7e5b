package aggregator

import (
	"context"
	"time"

	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/workspace"
	"github.com/rs/zerolog"
)

// Refresher pushes fresh snapshots to connected dashboards and returns how
// many were sent
type Refresher interface {
	Refresh() int
	ClientCount() int
}

// Aggregator refreshes live dashboards whenever the workspace changes
type Aggregator struct {
	ws     *workspace.Workspace
	hub    Refresher
	logger zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(ws *workspace.Workspace, hub Refresher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		ws:     ws,
		hub:    hub,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Start blocks until ctx is done, refreshing clients on every workspace change
func (a *Aggregator) Start(ctx context.Context) {
	changes := a.ws.Subscribe()
	m := metrics.Get()
	a.logger.Info().Msg("aggregator started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("aggregator stopped")
			return

		case <-changes:
			cycleStart := time.Now()
			sent := a.hub.Refresh()
			m.RecordAggregationCycle(time.Since(cycleStart), sent)

			a.logger.Debug().
				Int("tickets", a.ws.Len()).
				Int("snapshots_sent", sent).
				Int("clients", a.hub.ClientCount()).
				Dur("duration", time.Since(cycleStart)).
				Msg("dashboards refreshed")
		}
	}
}
