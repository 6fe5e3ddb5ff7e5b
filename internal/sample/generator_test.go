package sample

import (
	"bytes"
	"context"
	"testing"

	"github.com/heroual/MTSAV/internal/ingestion"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsDeterministic(t *testing.T) {
	a := NewGenerator(42).Rows(50)
	b := NewGenerator(42).Rows(50)
	c := NewGenerator(7).Rows(50)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	require.Len(t, a, 53)
	assert.Equal(t, Header, a[2])
}

func TestWorkbookParses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGenerator(1).Workbook(&buf, 500))

	p := ingestion.NewParser(zerolog.New(&bytes.Buffer{}))
	result, err := p.ParseFile(context.Background(), "sample.xlsx", &buf)
	require.NoError(t, err)

	assert.Equal(t, 500, result.Rows)
	assert.Equal(t, 0, result.Dropped)
	require.Len(t, result.Tickets, 500)

	reopened, voip, closed := 0, 0, 0
	for _, tk := range result.Tickets {
		assert.NotEqual(t, types.Unknown, tk.ZR)
		assert.NotEqual(t, "0000-00", tk.MoisAnnee)
		if tk.IsReopened() {
			reopened++
		}
		if tk.Produit == "VOIP" {
			voip++
		}
		if tk.DateCloture != nil {
			closed++
		}
		assert.GreaterOrEqual(t, tk.Delai, 0.0)
	}

	// About one in ten tickets is a recourse
	assert.InDelta(t, 50, reopened, 30)
	assert.Greater(t, voip, 0)
	assert.Greater(t, closed, 400)
}
