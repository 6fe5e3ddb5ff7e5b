package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace() *Workspace {
	return New(sectors.NewEmptyMapper(), zerolog.New(&bytes.Buffer{}))
}

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestReplaceAndReset(t *testing.T) {
	w := newTestWorkspace()
	changes := w.Subscribe()

	assert.Nil(t, w.Meta())
	assert.Empty(t, w.Tickets())

	tickets := []types.Ticket{
		{ID: "ticket-0", ZR: "Z2", Secteur: "Inconnu"},
		{ID: "ticket-1", ZR: "Z1", Secteur: "Inconnu"},
		{ID: "ticket-2", ZR: "Z2", Secteur: "Inconnu"},
	}
	w.Replace(tickets, types.ImportMeta{ID: "imp-1", FileName: "export.xlsx", Tickets: 3})

	require.True(t, received(changes))
	require.NotNil(t, w.Meta())
	assert.Equal(t, "export.xlsx", w.Meta().FileName)
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []string{"Z1", "Z2"}, w.RawZRs())

	w.Reset()
	require.True(t, received(changes))
	assert.Nil(t, w.Meta())
	assert.Equal(t, 0, w.Len())

	// resetting an empty workspace is silent
	w.Reset()
	assert.False(t, received(changes))
}

func TestUpdateMappingRemapsTickets(t *testing.T) {
	w := newTestWorkspace()
	w.Replace([]types.Ticket{{ID: "ticket-0", ZR: "Z1", Secteur: "Inconnu"}}, types.ImportMeta{ID: "imp"})
	changes := w.Subscribe()

	err := w.UpdateMapping(func(m *sectors.Mapper) error {
		if err := m.CreateSector("Agadir"); err != nil {
			return err
		}
		return m.Assign([]string{"Z1"}, "Agadir")
	})
	require.NoError(t, err)
	assert.True(t, received(changes))
	assert.Equal(t, "Agadir", w.Tickets()[0].Secteur)
}

func TestUpdateMappingErrorDoesNotNotify(t *testing.T) {
	w := newTestWorkspace()
	changes := w.Subscribe()

	boom := errors.New("boom")
	err := w.UpdateMapping(func(*sectors.Mapper) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, received(changes))
}

func TestNotificationsCoalesce(t *testing.T) {
	w := newTestWorkspace()
	changes := w.Subscribe()

	for i := 0; i < 5; i++ {
		w.Replace(nil, types.ImportMeta{ID: "imp"})
	}

	assert.True(t, received(changes))
	assert.False(t, received(changes))
}

func TestViewMatchesImport(t *testing.T) {
	w := newTestWorkspace()

	tickets, meta := w.View()
	assert.Empty(t, tickets)
	assert.Nil(t, meta)

	require.NoError(t, w.UpdateMapping(func(m *sectors.Mapper) error {
		if err := m.CreateSector("Taroudant"); err != nil {
			return err
		}
		return m.Assign([]string{"Z1"}, "Taroudant")
	}))

	imports := make([][]types.Ticket, 4)
	for i := range imports {
		imports[i] = make([]types.Ticket, i+1)
		for j := range imports[i] {
			imports[i][j] = types.Ticket{ID: fmt.Sprintf("ticket-%d", j), ZR: "Z1", Secteur: "Inconnu"}
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 0; n < 200; n++ {
			batch := imports[n%len(imports)]
			w.Replace(batch, types.ImportMeta{ID: fmt.Sprintf("imp-%d", n), Tickets: len(batch)})
		}
	}()

	for n := 0; n < 200; n++ {
		tickets, meta := w.View()
		if meta == nil {
			continue
		}
		require.Len(t, tickets, meta.Tickets, "tickets and meta come from the same import")
		assert.Equal(t, "Taroudant", tickets[0].Secteur)
	}
	wg.Wait()
}
