package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
)

// Layout of the operator export: two title rows, headers on row 3
const (
	headerRow    = 2
	firstDataRow = 3
)

var (
	// ErrNotEnoughRows is returned when the sheet has no data below the header row
	ErrNotEnoughRows = errors.New("le fichier ne contient pas assez de données (attendu : en-têtes à la ligne 3, données à partir de la ligne 4)")

	// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .xls
	ErrUnsupportedFormat = errors.New("format de fichier non supporté (attendu : .xlsx ou .xls)")
)

const unknownMonth = "0000-00"

// Result is the outcome of one import
type Result struct {
	ImportID string
	FileName string
	Tickets  []types.Ticket
	Rows     int            // data rows below the header
	Dropped  int            // data rows without ND
	Columns  map[string]int // resolved header indexes, -1 when missing
}

// Meta summarises the import for the workspace
func (r *Result) Meta(importedAt time.Time) types.ImportMeta {
	return types.ImportMeta{
		ID:         r.ImportID,
		FileName:   r.FileName,
		Rows:       r.Rows,
		Tickets:    len(r.Tickets),
		Dropped:    r.Dropped,
		ImportedAt: importedAt,
	}
}

// Parser turns export spreadsheets into normalised tickets
type Parser struct {
	// Now stamps tickets whose registration date cannot be read
	Now    func() time.Time
	logger zerolog.Logger
}

// NewParser creates a new Parser
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		Now:    time.Now,
		logger: logger.With().Str("component", "parser").Logger(),
	}
}

// ParseFile reads an uploaded workbook, choosing the reader from its extension
func (p *Parser) ParseFile(ctx context.Context, name string, r io.Reader) (*Result, error) {
	m := metrics.Get()

	reader, ok := ReaderFor(name)
	if !ok {
		m.RecordImportError()
		return nil, ErrUnsupportedFormat
	}

	rows, err := reader.ReadRows(r)
	if err != nil {
		m.RecordImportError()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.ParseRows(rows)
	if err != nil {
		m.RecordImportError()
		return nil, err
	}
	result.FileName = name

	m.RecordImport(len(result.Tickets), result.Dropped)
	p.logger.Info().
		Str("import_id", result.ImportID).
		Str("file", name).
		Int("rows", result.Rows).
		Int("tickets", len(result.Tickets)).
		Int("dropped", result.Dropped).
		Msg("workbook parsed")

	return result, nil
}

// ParseRows normalises raw sheet rows. Row 3 holds the headers; rows
// without ND are skipped; missing fields get placeholders.
func (p *Parser) ParseRows(rows [][]string) (*Result, error) {
	if len(rows) <= firstDataRow {
		return nil, ErrNotEnoughRows
	}

	cols := resolveColumns(rows[headerRow])
	for name, idx := range cols {
		if idx < 0 {
			p.logger.Debug().Str("column", name).Msg("column not found in header row")
		}
	}

	data := rows[firstDataRow:]
	result := &Result{
		ImportID: uuid.New().String(),
		Tickets:  make([]types.Ticket, 0, len(data)),
		Rows:     len(data),
		Columns:  cols,
	}

	for _, row := range data {
		cell := func(col string) string {
			idx := cols[col]
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		nd := cell(ColND)
		if nd == "" {
			result.Dropped++
			continue
		}

		ticket := p.normalize(cell)
		ticket.ID = fmt.Sprintf("ticket-%d", len(result.Tickets))
		ticket.ND = nd
		result.Tickets = append(result.Tickets, ticket)
	}

	return result, nil
}

func (p *Parser) normalize(cell func(string) string) types.Ticket {
	delai := parseDelay(cell(ColDelai))

	produit := orUnknown(cell(ColProduit))
	if strings.Contains(strings.ToUpper(cell(ColGroupe)), "VOIP FTTH") || strings.ToUpper(produit) == "VOIP FO" {
		produit = "VOIP"
	}

	t := types.Ticket{
		Produit:      produit,
		Secteur:      orUnknown(cell(ColSecteur)),
		ZR:           orUnknown(cell(ColZR)),
		Motif:        MotifLabel(orUnknown(cell(ColMotif))),
		Type:         orUnknown(cell(ColType)),
		TypeRecours:  cell(ColTypeRecours),
		Delai:        delai,
		SLARespected: sla.Respected(delai),
	}

	if enreg, ok := parseDate(cell(ColDateEnreg)); ok {
		t.DateEnreg = enreg
		t.MoisAnnee = enreg.Format("2006-01")
	} else {
		t.DateEnreg = p.Now()
		t.MoisAnnee = unknownMonth
	}

	if cloture, ok := parseDate(cell(ColDateCloture)); ok {
		t.DateCloture = &cloture
	}

	return t
}

func orUnknown(s string) string {
	if s == "" {
		return types.Unknown
	}
	return s
}
