package aggregator

import (
	"time"

	"github.com/heroual/MTSAV/internal/alerts"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/heroual/MTSAV/internal/workspace"
)

// SampleSize is the number of filtered tickets shipped with a snapshot
const SampleSize = 100

// Dashboard computes snapshots from the workspace
type Dashboard struct {
	ws  *workspace.Workspace
	now func() time.Time
}

// NewDashboard creates a dashboard over a workspace
func NewDashboard(ws *workspace.Workspace) *Dashboard {
	return &Dashboard{ws: ws, now: time.Now}
}

// Filtered returns the remapped tickets matching fs, along with the
// normalised filter
func (d *Dashboard) Filtered(fs types.FilterState) ([]types.Ticket, types.FilterState, error) {
	fs, err := filter.Normalize(fs)
	if err != nil {
		return nil, fs, err
	}
	return filter.Apply(d.ws.Tickets(), fs), fs, nil
}

// Snapshot runs the whole pipeline for one filter selection
func (d *Dashboard) Snapshot(fs types.FilterState) (*types.Snapshot, error) {
	fs, err := filter.Normalize(fs)
	if err != nil {
		return nil, err
	}

	tickets, meta := d.ws.View()
	filtered := filter.Apply(tickets, fs)
	stats := Calculate(filtered)

	sample := filtered
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	return &types.Snapshot{
		Import:        meta,
		Filters:       fs,
		Stats:         stats,
		Tones:         sla.Tones(stats),
		Alerts:        alerts.Check(stats),
		Options:       filter.Options(tickets),
		Sample:        sample,
		FilteredTotal: len(filtered),
		GeneratedAt:   d.now(),
	}, nil
}
