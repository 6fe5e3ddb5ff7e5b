package workspace

import (
	"sort"
	"sync"

	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
)

// Workspace holds the tickets of the current import and the sector mapping
// applied to them. It lives in memory only; a new import replaces the
// previous one.
type Workspace struct {
	mu      sync.RWMutex
	tickets []types.Ticket // as parsed, before remapping
	meta    *types.ImportMeta
	mapper  *sectors.Mapper

	subMu       sync.Mutex
	subscribers []chan struct{}

	logger zerolog.Logger
}

// New creates an empty workspace around a sector mapper
func New(mapper *sectors.Mapper, logger zerolog.Logger) *Workspace {
	if mapper == nil {
		mapper = sectors.NewMapper()
	}
	return &Workspace{
		mapper: mapper,
		logger: logger.With().Str("component", "workspace").Logger(),
	}
}

// Replace swaps in the tickets of a new import
func (w *Workspace) Replace(tickets []types.Ticket, meta types.ImportMeta) {
	w.mu.Lock()
	w.tickets = tickets
	w.meta = &meta
	w.mu.Unlock()

	w.logger.Info().
		Str("import_id", meta.ID).
		Str("file", meta.FileName).
		Int("tickets", len(tickets)).
		Msg("workspace replaced")
	w.notify()
}

// Reset drops the current import. The sector mapping is kept.
func (w *Workspace) Reset() {
	w.mu.Lock()
	had := w.meta != nil
	w.tickets = nil
	w.meta = nil
	w.mu.Unlock()

	if had {
		w.logger.Info().Msg("workspace cleared")
		w.notify()
	}
}

// Tickets returns the current tickets with the sector mapping applied
func (w *Workspace) Tickets() []types.Ticket {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mapper.Apply(w.tickets)
}

// View returns the remapped tickets together with the import they came
// from, read under one lock so a concurrent Replace cannot split them.
func (w *Workspace) View() ([]types.Ticket, *types.ImportMeta) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.meta == nil {
		return w.mapper.Apply(w.tickets), nil
	}
	meta := *w.meta
	return w.mapper.Apply(w.tickets), &meta
}

// Len returns the number of loaded tickets
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.tickets)
}

// RawZRs returns the sorted distinct ZRs of the loaded tickets
func (w *Workspace) RawZRs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	seen := make(map[string]bool)
	zrs := make([]string, 0)
	for _, t := range w.tickets {
		if !seen[t.ZR] {
			seen[t.ZR] = true
			zrs = append(zrs, t.ZR)
		}
	}
	sort.Strings(zrs)
	return zrs
}

// Meta returns the current import description, or nil when nothing is loaded
func (w *Workspace) Meta() *types.ImportMeta {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.meta == nil {
		return nil
	}
	meta := *w.meta
	return &meta
}

// Mapper exposes the sector mapper for reads. Changes go through
// UpdateMapping so subscribers are told about them.
func (w *Workspace) Mapper() *sectors.Mapper {
	return w.mapper
}

// UpdateMapping runs fn against the mapper and notifies subscribers when it
// succeeds
func (w *Workspace) UpdateMapping(fn func(m *sectors.Mapper) error) error {
	if err := fn(w.mapper); err != nil {
		return err
	}
	metrics.Get().RecordMappingChange()
	w.logger.Debug().Int("sectors", len(w.mapper.Sectors())).Msg("sector mapping updated")
	w.notify()
	return nil
}

// Subscribe returns a channel signalled after each change. Bursts of
// changes coalesce into one pending signal.
func (w *Workspace) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	w.subMu.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.subMu.Unlock()
	return ch
}

func (w *Workspace) notify() {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
