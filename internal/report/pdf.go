package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/sla"
)

// ExtractSize is the number of tickets listed on the extract page
const ExtractSize = 100

const (
	margin       = 15.0
	bottomMargin = 20.0
	rowHeight    = 7.0
)

type rgb struct{ r, g, b int }

var (
	red600   = rgb{220, 38, 38}
	red800   = rgb{153, 27, 27}
	red300   = rgb{252, 165, 165}
	red50    = rgb{254, 242, 242}
	gray800  = rgb{31, 41, 55}
	gray400  = rgb{156, 163, 175}
	gray100  = rgb{243, 244, 246}
	green600 = rgb{5, 150, 105}
	white    = rgb{255, 255, 255}
)

// WritePDF renders the executive report
func WritePDF(w io.Writer, in Input) error {
	pdf, err := build(in)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	metrics.Get().RecordReport("pdf")
	return nil
}

type renderer struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	pageW     float64
	pageH     float64
	generated string
}

func build(in Input) (*fpdf.Fpdf, error) {
	if len(in.Tickets) == 0 {
		return nil, ErrNoTickets
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, bottomMargin)
	pdf.AliasNbPages("")
	w, h := pdf.GetPageSize()

	r := &renderer{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		pageW:     w,
		pageH:     h,
		generated: in.GeneratedAt.Format("02/01/2006 15:04"),
	}
	pdf.SetFooterFunc(r.footer)

	pdf.AddPage()
	r.header()
	r.filterLine(filter.Label(in.Filters))
	r.cards(in)
	r.segmentation(in)

	pdf.AddPage()
	r.extract(in)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

func (r *renderer) fill(c rgb) { r.pdf.SetFillColor(c.r, c.g, c.b) }
func (r *renderer) text(c rgb) { r.pdf.SetTextColor(c.r, c.g, c.b) }
func (r *renderer) draw(c rgb) { r.pdf.SetDrawColor(c.r, c.g, c.b) }

func (r *renderer) header() {
	p := r.pdf
	r.fill(red600)
	p.Rect(0, 0, r.pageW, 45, "F")

	r.text(white)
	p.SetFont("Helvetica", "B", 26)
	p.Text(margin, 22, r.tr("RAPPORT EXÉCUTIF MtSAV-Taroudant"))

	p.SetFont("Helvetica", "B", 10)
	p.Text(margin, 32, r.tr("PLATEFORME ANALYTIQUE TÉLÉCOM DE PRÉCISION"))
	date := r.tr("DATE DE GÉNÉRATION : " + r.generated)
	p.Text(r.pageW-margin-p.GetStringWidth(date), 32, date)
}

func (r *renderer) filterLine(label string) {
	r.text(red800)
	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.Text(margin, 52, r.tr(label))
}

func (r *renderer) cards(in Input) {
	const (
		cardY   = 58.0
		cardH   = 30.0
		cardGap = 3.0
	)
	cardW := (r.pageW - 40) / 4
	s := in.Stats

	cards := []struct {
		label string
		value string
		alert bool
	}{
		{"VOLUME DES TICKETS", strconv.Itoa(s.TotalTickets), false},
		{"PERFORMANCE SLA", fmt.Sprintf("%.1f%%", s.SLARate), s.SLARate < sla.Target},
		{"DÉLAI MOYEN (J)", fmt.Sprintf("%.2f", s.AvgDelay), s.AvgDelay > sla.DelayLimit},
		{"ALERTES CRITIQUES", strconv.Itoa(s.ExceededSLA), s.ExceededSLA > 0},
	}

	p := r.pdf
	for i, c := range cards {
		x := margin + float64(i)*(cardW+cardGap)
		r.fill(red50)
		r.draw(red300)
		p.RoundedRect(x, cardY, cardW, cardH, 4, "1234", "FD")

		r.text(red800)
		p.SetFont("Helvetica", "B", 7)
		p.Text(x+5, cardY+10, r.tr(c.label))

		if c.alert {
			r.text(red600)
		} else {
			r.text(gray800)
		}
		p.SetFont("Helvetica", "B", 16)
		p.Text(x+5, cardY+22, c.value)
	}
}

func (r *renderer) segmentation(in Input) {
	p := r.pdf
	s := in.Stats

	r.text(gray800)
	p.SetFont("Helvetica", "B", 14)
	p.Text(margin, 100, r.tr("SEGMENTATION OPÉRATIONNELLE"))

	half := (r.pageW - 2*margin - 10) / 2

	products := make([][]cell, 0, len(s.TicketsPerProduct))
	for _, prod := range s.TicketsPerProduct {
		share := 0.0
		if s.TotalTickets > 0 {
			share = float64(prod.Value) / float64(s.TotalTickets) * 100
		}
		products = append(products, []cell{
			{text: strings.ToUpper(prod.Name)},
			{text: strconv.Itoa(prod.Value)},
			{text: fmt.Sprintf("%.1f%%", share)},
		})
	}

	motifs := make([][]cell, 0, len(s.TicketsPerMotif))
	for _, m := range s.TicketsPerMotif {
		motifs = append(motifs, []cell{
			{text: strings.ToUpper(m.Name)},
			{text: strconv.Itoa(m.Value)},
		})
	}

	y := r.sideBySide(
		tableSpec{
			x:        margin,
			headFill: red600,
			fontSize: 8,
			striped:  true,
			columns: []column{
				{title: "OFFRE PRODUIT", width: half * 0.5, align: "L"},
				{title: "VOLUME", width: half * 0.2, align: "C"},
				{title: "POURCENTAGE", width: half * 0.3, align: "C"},
			},
		},
		tableSpec{
			x:        margin + half + 10,
			headFill: gray800,
			fontSize: 7,
			striped:  true,
			columns: []column{
				{title: "TOP 10 MOTIFS CRITIQUES", width: half * 0.75, align: "L"},
				{title: "TICKETS", width: half * 0.25, align: "C"},
			},
		},
		105, products, motifs)

	secteurs := make([][]cell, 0, len(s.TicketsPerSecteur))
	for _, sec := range s.TicketsPerSecteur {
		secteurs = append(secteurs, []cell{
			{text: strings.ToUpper(sec.Name)},
			{text: strconv.Itoa(sec.Total)},
			{text: fmt.Sprintf("%.2f", sec.Delay)},
		})
	}
	full := r.pageW - 2*margin
	r.table(tableSpec{
		x:        margin,
		headFill: red600,
		fontSize: 9,
		grid:     true,
		columns: []column{
			{title: "RÉGION / SECTEUR", width: full * 0.5, align: "L"},
			{title: "VOLUME TICKETS", width: full * 0.25, align: "C"},
			{title: "DÉLAI MOYEN (J)", width: full * 0.25, align: "C"},
		},
	}, y+15, secteurs)
}

func (r *renderer) extract(in Input) {
	p := r.pdf
	r.fill(gray800)
	p.Rect(0, 0, r.pageW, 18, "F")
	r.text(white)
	p.SetFont("Helvetica", "B", 11)
	p.Text(margin, 12, r.tr(fmt.Sprintf("EXTRACT OPÉRATIONNEL (ÉCHANTILLON %d)", ExtractSize)))

	tickets := in.Tickets
	if len(tickets) > ExtractSize {
		tickets = tickets[:ExtractSize]
	}

	rows := make([][]cell, 0, len(tickets))
	for _, t := range tickets {
		status := cell{text: "CONFORME", color: &green600, bold: true}
		if !t.SLARespected {
			status = cell{text: "CRITIQUE", color: &red600, bold: true}
		}
		rows = append(rows, []cell{
			{text: t.ND},
			{text: strings.ToUpper(t.Produit)},
			{text: strings.ToUpper(t.Secteur)},
			{text: t.ZR},
			{text: fmt.Sprintf("%.2f", t.Delai), bold: true},
			status,
		})
	}

	full := r.pageW - 2*margin
	r.table(tableSpec{
		x:        margin,
		headFill: red600,
		fontSize: 7,
		striped:  true,
		columns: []column{
			{title: "ND / LOGIN", width: full * 0.2, align: "L"},
			{title: "OFFRE", width: full * 0.15, align: "L"},
			{title: "REGION", width: full * 0.2, align: "L"},
			{title: "ZR", width: full * 0.17, align: "L"},
			{title: "DÉLAI", width: full * 0.12, align: "C"},
			{title: "STATUT", width: full * 0.16, align: "C"},
		},
	}, 25, rows)
}

func (r *renderer) footer() {
	p := r.pdf
	p.SetY(-10)
	p.SetFont("Helvetica", "", 7)
	r.text(gray400)
	p.CellFormat(0, 4, fmt.Sprintf("MtSAV-Taroudant ANALYTIQUE - DOCUMENT CONFIDENTIEL - PAGE %d SUR {nb}", p.PageNo()),
		"", 0, "C", false, 0, "")
}

type column struct {
	title string
	width float64
	align string
}

type cell struct {
	text  string
	color *rgb
	bold  bool
}

type tableSpec struct {
	x        float64
	columns  []column
	headFill rgb
	fontSize float64
	striped  bool
	grid     bool
}

// table draws a header row and the body from y, moving to a new page and
// repeating the header when the page is full. It returns the y below the
// last row.
func (r *renderer) table(spec tableSpec, y float64, rows [][]cell) float64 {
	if y+2*rowHeight > r.pageH-bottomMargin {
		r.pdf.AddPage()
		y = margin
	}
	y = r.tableHeader(spec, y)

	for i, row := range rows {
		if r.full(y) {
			r.pdf.AddPage()
			y = r.tableHeader(spec, margin)
		}
		r.row(spec, y, i, row)
		y += rowHeight
	}
	return y
}

// sideBySide draws two tables sharing rows, so a page break moves both
func (r *renderer) sideBySide(left, right tableSpec, y float64, leftRows, rightRows [][]cell) float64 {
	r.tableHeader(left, y)
	y = r.tableHeader(right, y)

	n := len(leftRows)
	if len(rightRows) > n {
		n = len(rightRows)
	}
	for i := 0; i < n; i++ {
		if r.full(y) {
			r.pdf.AddPage()
			r.tableHeader(left, margin)
			y = r.tableHeader(right, margin)
		}
		if i < len(leftRows) {
			r.row(left, y, i, leftRows[i])
		}
		if i < len(rightRows) {
			r.row(right, y, i, rightRows[i])
		}
		y += rowHeight
	}
	return y
}

func (r *renderer) full(y float64) bool {
	return y+rowHeight > r.pageH-bottomMargin
}

func (r *renderer) row(spec tableSpec, y float64, i int, row []cell) {
	p := r.pdf
	fill := spec.striped && i%2 == 1
	if fill {
		r.fill(gray100)
	}
	border := ""
	if spec.grid {
		border = "1"
		r.draw(gray400)
	}

	x := spec.x
	for c, col := range spec.columns {
		var value cell
		if c < len(row) {
			value = row[c]
		}
		style := ""
		if value.bold {
			style = "B"
		}
		p.SetFont("Helvetica", style, spec.fontSize)
		if value.color != nil {
			r.text(*value.color)
		} else {
			r.text(gray800)
		}
		p.SetXY(x, y)
		p.CellFormat(col.width, rowHeight, r.tr(value.text), border, 0, col.align, fill, 0, "")
		x += col.width
	}
}

func (r *renderer) tableHeader(spec tableSpec, y float64) float64 {
	p := r.pdf
	r.fill(spec.headFill)
	r.text(white)
	p.SetFont("Helvetica", "B", spec.fontSize)

	x := spec.x
	for _, col := range spec.columns {
		p.SetXY(x, y)
		p.CellFormat(col.width, rowHeight, r.tr(col.title), "", 0, col.align, true, 0, "")
		x += col.width
	}
	return y + rowHeight
}
