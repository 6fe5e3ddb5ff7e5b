// Package sample writes synthetic ticket exports for demos and tests.
package sample

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/heroual/MTSAV/internal/ingestion"
	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Export"

// Header is the header row of the operator export (row 3)
var Header = []string{
	"ND", "Produit", "Secteur", "ZR", "Motif", "Type", "Type Recours",
	"Date Enreg", "Date Clôture", "Délai", "Groupe",
}

type weighted struct {
	value  string
	weight int
}

// Distribution: 45% FTTH, 35% ADSL, 12% VOIP FO, 8% 4G Box
var products = []weighted{
	{"FTTH", 45},
	{"ADSL", 35},
	{"VOIP FO", 12},
	{"4G Box", 8},
}

var ticketTypes = []weighted{
	{"Dérangement", 70},
	{"Réclamation technique", 20},
	{"Demande d'intervention", 10},
}

// Generator creates fake export rows with realistic distributions
type Generator struct {
	rng   *rand.Rand
	zrs   []string
	start time.Time
}

// NewGenerator creates a new generator. The same seed always yields the
// same workbook.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		zrs:   sectors.DefaultZRs(),
		start: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// Rows returns the full sheet: two title rows, the header row and count
// data rows
func (g *Generator) Rows(count int) [][]string {
	rows := make([][]string, 0, count+3)
	rows = append(rows,
		[]string{"Export des tickets SAV - Taroudant"},
		[]string{fmt.Sprintf("Extraction du %s", g.start.Format("02/01/2006"))},
		Header,
	)
	for i := 0; i < count; i++ {
		rows = append(rows, g.row(i))
	}
	return rows
}

func (g *Generator) row(i int) []string {
	produit := g.weightedChoice(products)
	groupe := "GRP SAV TAROUDANT"
	if produit == "FTTH" && g.rng.Intn(10) == 0 {
		groupe = "EQUIPE VOIP FTTH"
	}

	recours := ""
	if g.rng.Intn(10) == 0 {
		recours = "RECL"
	}

	motifs := ingestion.MotifCodes()
	enreg := g.start.Add(time.Duration(g.rng.Intn(180*24*60)) * time.Minute)

	// Most tickets close within a day, a long tail takes up to a week
	hours := g.rng.ExpFloat64() * 18
	if hours > 7*24 {
		hours = 7 * 24
	}
	delai := hours / 24

	cloture := ""
	if g.rng.Intn(20) > 0 {
		cloture = enreg.Add(time.Duration(hours * float64(time.Hour))).Format("02/01/2006 15:04")
	}

	return []string{
		fmt.Sprintf("05288%05d", i+1),
		produit,
		sectors.DefaultSector,
		g.zrs[g.rng.Intn(len(g.zrs))],
		motifs[g.rng.Intn(len(motifs))],
		g.weightedChoice(ticketTypes),
		recours,
		enreg.Format("02/01/2006 15:04"),
		cloture,
		strconv.FormatFloat(delai, 'f', 2, 64),
		groupe,
	}
}

// weightedChoice selects an item based on weights
func (g *Generator) weightedChoice(items []weighted) string {
	total := 0
	for _, it := range items {
		total += it.weight
	}

	choice := g.rng.Intn(total)
	cumulative := 0
	for _, it := range items {
		cumulative += it.weight
		if choice < cumulative {
			return it.value
		}
	}
	return items[0].value
}

// Workbook writes count data rows as an .xlsx document
func (g *Generator) Workbook(w io.Writer, count int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, row := range g.Rows(count) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "K", 18); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
