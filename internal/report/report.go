// Package report renders filtered tickets as a PDF executive report or a
// CSV extract.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/heroual/MTSAV/internal/types"
)

// ErrNoTickets is returned when there is nothing to report on
var ErrNoTickets = errors.New("aucun ticket à exporter")

// Input is what a report is built from
type Input struct {
	Stats       types.Statistics
	Tickets     []types.Ticket // filtered, in display order
	Filters     types.FilterState
	GeneratedAt time.Time
}

// Filename returns the download name of the PDF report
func Filename(t time.Time) string {
	return fmt.Sprintf("Rapport_Executif_MtSAV-Taroudant_%s.pdf", t.Format("20060102"))
}

// CSVFilename returns the download name of the CSV extract
func CSVFilename(t time.Time) string {
	return fmt.Sprintf("Extract_MtSAV-Taroudant_%s.csv", t.Format("20060102"))
}
