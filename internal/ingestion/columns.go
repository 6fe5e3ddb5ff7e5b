package ingestion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column names looked up in the header row
const (
	ColND          = "ND"
	ColProduit     = "Produit"
	ColSecteur     = "Secteur"
	ColZR          = "ZR"
	ColMotif       = "Motif"
	ColType        = "Type"
	ColTypeRecours = "Recours"
	ColDateEnreg   = "Enreg"
	ColDateCloture = "clôture"
	ColDelai       = "Délai"
	ColGroupe      = "Groupe"
)

var columnNames = []string{
	ColND, ColProduit, ColSecteur, ColZR, ColMotif, ColType,
	ColTypeRecours, ColDateEnreg, ColDateCloture, ColDelai, ColGroupe,
}

// fold lower-cases s and strips diacritics so "Délai" matches "DELAI"
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// resolveColumns maps every known column name to its index in the header
// row, -1 when absent. An exact header wins over the first header that
// merely contains the name.
func resolveColumns(header []string) map[string]int {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = fold(h)
	}

	cols := make(map[string]int, len(columnNames))
	for _, name := range columnNames {
		cols[name] = findColumn(folded, fold(name))
	}
	return cols
}

func findColumn(folded []string, name string) int {
	for i, h := range folded {
		if h == name {
			return i
		}
	}
	for i, h := range folded {
		if h != "" && strings.Contains(h, name) {
			return i
		}
	}
	return -1
}
