package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/types"
)

const csvDateLayout = "02/01/2006 15:04"

var csvHeader = []string{
	"ND", "Produit", "Secteur", "ZR", "Motif", "Type", "Type Recours",
	"Date Enregistrement", "Date Clôture", "Délai (j)", "Statut SLA", "Mois",
}

// WriteCSV writes the tickets as a ;-separated extract Excel opens as UTF-8
func WriteCSV(w io.Writer, tickets []types.Ticket) error {
	if len(tickets) == 0 {
		return ErrNoTickets
	}

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range tickets {
		if err := cw.Write(csvRecord(t)); err != nil {
			return fmt.Errorf("failed to write ticket %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	metrics.Get().RecordReport("csv")
	return nil
}

func csvRecord(t types.Ticket) []string {
	return []string{
		t.ND,
		t.Produit,
		t.Secteur,
		t.ZR,
		t.Motif,
		t.Type,
		t.TypeRecours,
		formatDate(&t.DateEnreg),
		formatDate(t.DateCloture),
		strconv.FormatFloat(t.Delai, 'f', 2, 64),
		statusLabel(t.SLARespected),
		t.MoisAnnee,
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(csvDateLayout)
}

func statusLabel(respected bool) string {
	if respected {
		return "CONFORME"
	}
	return "CRITIQUE"
}
