package ingestion

import (
	"sort"
	"strings"
)

// motifLabels translates closure motif codes to their readable label
var motifLabels = map[string]string{
	"GRFD": "Fibre optique en dérangement",
	"GBF":  "Fibre Mauvaise",
	"CPSW": "Porté Signal Wiffi",
	"CICE": "Client injoinable/contact erroné",
	"GBCA": "Câble Optique Arraché",
	"CCM":  "Configuration matériel",
	"CAIN": "Client Absent/Injoignable",
	"CAT":  "Assistance téléphonique",
	"CRDV": "Client reporte rendez-Vous",
	"GECO": "Changement ONT",
	"RLD":  "Ligne en dérangement",
	"RDLD": "Débit limité par la distance",
	"CECC": "Coupure secteur",
	"CCID": "Câblage interne dégradé",
}

// MotifLabel returns the label of a motif code, or the raw value when the
// code is unknown
func MotifLabel(raw string) string {
	if label, ok := motifLabels[strings.ToUpper(raw)]; ok {
		return label
	}
	return raw
}

// MotifCodes returns the known motif codes, sorted
func MotifCodes() []string {
	codes := make([]string, 0, len(motifLabels))
	for code := range motifLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
