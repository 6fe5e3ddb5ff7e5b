package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDelay(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.5", 0.5},
		{" 2 ", 2},
		{"1.75 jours", 1.75},
		{"-0.2", -0.2},
		{".5", 0.5},
		{"3e1", 30},
		{"1,5", 1},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDelay(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"15/01/2024 09:30:00", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), true},
		{"15/01/2024 09:30", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), true},
		{"05/02/2024", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), true},
		{"5/2/2024", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-02-05 10:00:00", time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC), true},
		{"2024-02-05T10:00:00Z", time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC), true},
		{"45306", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"45306.5", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), true},
		{"20240315", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"99999999", time.Time{}, false},
		{"2958466", time.Time{}, false},
		{"2024", time.Time{}, false},
		{"-45306", time.Time{}, false},
		{"", time.Time{}, false},
		{"0", time.Time{}, false},
		{"hier", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.WithinDuration(t, tt.want, got, time.Second)
			}
		})
	}
}

func TestResolveColumns(t *testing.T) {
	cols := resolveColumns([]string{
		"Type Recours", "N° ND", "ND", "PRODUIT", "Secteur", "ZR", "Motif", "Type",
		"Date Enregistrement", "Date Cloture", "DELAI", "Groupe Intervention",
	})

	assert.Equal(t, 0, cols[ColTypeRecours])
	assert.Equal(t, 2, cols[ColND], "exact header wins over substring")
	assert.Equal(t, 3, cols[ColProduit])
	assert.Equal(t, 7, cols[ColType], "exact Type wins over Type Recours")
	assert.Equal(t, 8, cols[ColDateEnreg])
	assert.Equal(t, 9, cols[ColDateCloture], "accents are ignored")
	assert.Equal(t, 10, cols[ColDelai])
	assert.Equal(t, 11, cols[ColGroupe])
}

func TestMotifLabel(t *testing.T) {
	assert.Equal(t, "Changement ONT", MotifLabel("geco"))
	assert.Equal(t, "Autre motif", MotifLabel("Autre motif"))
	assert.Len(t, MotifCodes(), 14)
}
