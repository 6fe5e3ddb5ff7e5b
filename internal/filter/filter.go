package filter

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/heroual/MTSAV/internal/types"
)

// ErrInvalidStatus is returned for an unknown SLA or reopen status
var ErrInvalidStatus = errors.New("invalid status filter")

// Apply returns the tickets matching every criterion of fs, in input order
func Apply(tickets []types.Ticket, fs types.FilterState) []types.Ticket {
	m := newMatcher(fs)
	out := make([]types.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	produit, secteur, zr, motif, typ, mois map[string]bool
	sla                                    types.SLAStatus
	reopen                                 types.ReopenStatus
	query                                  string
}

func newMatcher(fs types.FilterState) matcher {
	return matcher{
		produit: set(fs.Produit),
		secteur: set(fs.Secteur),
		zr:      set(fs.ZR),
		motif:   set(fs.Motif),
		typ:     set(fs.Type),
		mois:    set(fs.Mois),
		sla:     fs.StatusSLA,
		reopen:  fs.StatusReouverture,
		query:   strings.ToLower(fs.SearchQuery),
	}
}

func set(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	s := make(map[string]bool, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

// in reports whether v is selected; an empty selection accepts everything
func in(s map[string]bool, v string) bool {
	return s == nil || s[v]
}

func (m matcher) match(t types.Ticket) bool {
	if !in(m.produit, t.Produit) || !in(m.secteur, t.Secteur) || !in(m.zr, t.ZR) ||
		!in(m.motif, t.Motif) || !in(m.typ, t.Type) || !in(m.mois, t.MoisAnnee) {
		return false
	}

	switch m.sla {
	case types.SLARespected:
		if !t.SLARespected {
			return false
		}
	case types.SLAExceeded:
		if t.SLARespected {
			return false
		}
	}

	switch m.reopen {
	case types.ReopenReopened:
		if !t.IsReopened() {
			return false
		}
	case types.ReopenNormal:
		if t.IsReopened() {
			return false
		}
	}

	if m.query == "" {
		return true
	}
	for _, field := range []string{t.ND, t.ZR, t.Motif, t.Type, t.Secteur} {
		if strings.Contains(strings.ToLower(field), m.query) {
			return true
		}
	}
	return false
}

// Options returns the sorted unique values of each filterable field
func Options(tickets []types.Ticket) types.FilterOptions {
	var produit, secteur, zr, motif, typ, mois []string
	for _, t := range tickets {
		produit = append(produit, t.Produit)
		secteur = append(secteur, t.Secteur)
		zr = append(zr, t.ZR)
		motif = append(motif, t.Motif)
		typ = append(typ, t.Type)
		mois = append(mois, t.MoisAnnee)
	}
	return types.FilterOptions{
		Produit: Unique(produit),
		Secteur: Unique(secteur),
		ZR:      Unique(zr),
		Motif:   Unique(motif),
		Type:    Unique(typ),
		Mois:    Unique(mois),
	}
}

// Unique returns the sorted distinct values, never nil
func Unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Normalize fills unset statuses and rejects unknown ones
func Normalize(fs types.FilterState) (types.FilterState, error) {
	switch fs.StatusSLA {
	case "":
		fs.StatusSLA = types.SLAAll
	case types.SLAAll, types.SLARespected, types.SLAExceeded:
	default:
		return fs, fmt.Errorf("%w: statusSla=%q", ErrInvalidStatus, fs.StatusSLA)
	}

	switch fs.StatusReouverture {
	case "":
		fs.StatusReouverture = types.ReopenAll
	case types.ReopenAll, types.ReopenReopened, types.ReopenNormal:
	default:
		return fs, fmt.Errorf("%w: statusReouverture=%q", ErrInvalidStatus, fs.StatusReouverture)
	}
	return fs, nil
}

// FromQuery decodes a filter from URL query parameters. Multi-selects are
// repeated parameters (?produit=ADSL&produit=FTTH); the search text is q.
func FromQuery(q url.Values) (types.FilterState, error) {
	fs := types.FilterState{
		Produit:           values(q, "produit"),
		Secteur:           values(q, "secteur"),
		ZR:                values(q, "zr"),
		Motif:             values(q, "motif"),
		Type:              values(q, "type"),
		Mois:              values(q, "mois"),
		StatusSLA:         types.SLAStatus(q.Get("statusSla")),
		StatusReouverture: types.ReopenStatus(q.Get("statusReouverture")),
		SearchQuery:       q.Get("q"),
	}
	return Normalize(fs)
}

func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Label renders the active SLA view and search the way the executive
// report prints it
func Label(fs types.FilterState) string {
	label := "FILTRES ACTIFS : "
	switch fs.StatusSLA {
	case types.SLARespected:
		label += "CONFORME SLA"
	case types.SLAExceeded:
		label += "CRITIQUE (HORS DÉLAI)"
	default:
		label += "CONSOLIDÉ"
	}
	if fs.SearchQuery != "" {
		label += fmt.Sprintf(" | RECHERCHE : \"%s\"", strings.ToUpper(fs.SearchQuery))
	}
	return label
}
