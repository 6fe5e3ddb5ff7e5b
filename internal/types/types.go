package types

import (
	"strings"
	"time"
)

// Placeholder substituted for missing categorical fields
const Unknown = "Inconnu"

// Ticket is one customer-service case read from an export row
type Ticket struct {
	ID           string     `json:"id"`
	ND           string     `json:"nd"`
	Produit      string     `json:"produit"`
	Secteur      string     `json:"secteur"`
	ZR           string     `json:"zr"`
	Motif        string     `json:"motif"`
	Type         string     `json:"type"`
	TypeRecours  string     `json:"typeRecours"`
	DateEnreg    time.Time  `json:"dateEnreg"`
	DateCloture  *time.Time `json:"dateCloture"`
	Delai        float64    `json:"delai"` // days
	SLARespected bool       `json:"isSlaRespected"`
	MoisAnnee    string     `json:"moisAnnee"` // yyyy-MM, 0000-00 when the registration date is unusable
}

// IsReopened reports whether the ticket is a complaint recourse (RECL)
func (t Ticket) IsReopened() bool {
	return strings.Contains(strings.ToUpper(t.TypeRecours), "RECL")
}

// SLAStatus selects tickets by SLA outcome
type SLAStatus string

const (
	SLAAll       SLAStatus = "all"
	SLARespected SLAStatus = "respected"
	SLAExceeded  SLAStatus = "exceeded"
)

// ReopenStatus selects tickets by reopen flag
type ReopenStatus string

const (
	ReopenAll      ReopenStatus = "all"
	ReopenReopened ReopenStatus = "reopened"
	ReopenNormal   ReopenStatus = "normal"
)

// FilterState is the active selection applied to the ticket set.
// Empty multi-selects match everything.
type FilterState struct {
	Produit           []string     `json:"produit"`
	Secteur           []string     `json:"secteur"`
	ZR                []string     `json:"zr"`
	Motif             []string     `json:"motif"`
	Type              []string     `json:"type"`
	Mois              []string     `json:"mois"`
	StatusSLA         SLAStatus    `json:"statusSla"`
	StatusReouverture ReopenStatus `json:"statusReouverture"`
	SearchQuery       string       `json:"searchQuery"`
}

// FilterOptions lists the selectable values of each categorical field
type FilterOptions struct {
	Produit []string `json:"produit"`
	Secteur []string `json:"secteur"`
	ZR      []string `json:"zr"`
	Motif   []string `json:"motif"`
	Type    []string `json:"type"`
	Mois    []string `json:"mois"`
}

// NameValue is a count keyed by label
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthCount holds the volume and SLA-compliant volume of a month bucket
type MonthCount struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	SLA   int    `json:"sla"`
}

// GroupDelay holds the volume and average delay of a sector or ZR
type GroupDelay struct {
	Name  string  `json:"name"`
	Total int     `json:"total"`
	Delay float64 `json:"delay"`
}

// Statistics is the aggregate over a filtered ticket set
type Statistics struct {
	TotalTickets      int          `json:"totalTickets"`
	RespectedSLA      int          `json:"respectedSla"`
	ExceededSLA       int          `json:"exceededSla"`
	SLARate           float64      `json:"slaRate"`
	AvgDelay          float64      `json:"avgDelay"`
	ReopenedTickets   int          `json:"reopenedTickets"`
	ReopenedRate      float64      `json:"reopenedRate"`
	TicketsPerMonth   []MonthCount `json:"ticketsPerMonth"`
	TicketsPerProduct []NameValue  `json:"ticketsPerProduct"`
	TicketsPerSecteur []GroupDelay `json:"ticketsPerSecteur"`
	TicketsPerZR      []GroupDelay `json:"ticketsPerZR"`
	TicketsPerMotif   []NameValue  `json:"ticketsPerMotif"`
	TicketsPerType    []NameValue  `json:"ticketsPerType"`
}

// AlertSeverity represents the severity of a KPI alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// KPIAlert represents a KPI outside its accepted range
type KPIAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Tone is the colour class a dashboard card is rendered with
type Tone string

const (
	ToneGreen Tone = "green"
	ToneAmber Tone = "amber"
	ToneRed   Tone = "red"
)

// KPITones maps each headline card to its tone
type KPITones struct {
	SLARate      Tone `json:"slaRate"`
	AvgDelay     Tone `json:"avgDelay"`
	ReopenedRate Tone `json:"reopenedRate"`
}

// ImportMeta describes the spreadsheet currently loaded in the workspace
type ImportMeta struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Rows       int       `json:"rows"`
	Tickets    int       `json:"tickets"`
	Dropped    int       `json:"dropped"`
	ImportedAt time.Time `json:"importedAt"`
}

// Snapshot is everything a dashboard needs to render one filter selection
type Snapshot struct {
	Import        *ImportMeta   `json:"import"`
	Filters       FilterState   `json:"filters"`
	Stats         Statistics    `json:"stats"`
	Tones         KPITones      `json:"tones"`
	Alerts        []KPIAlert    `json:"alerts"`
	Options       FilterOptions `json:"options"`
	Sample        []Ticket      `json:"sample"`
	FilteredTotal int           `json:"filteredTotal"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// Insight is the narrative commentary generated for a statistics set
type Insight struct {
	Text        string    `json:"text"`
	Model       string    `json:"model,omitempty"`
	Degraded    bool      `json:"degraded"`
	GeneratedAt time.Time `json:"generatedAt"`
}
