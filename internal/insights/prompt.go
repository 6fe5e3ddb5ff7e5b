package insights

import (
	"fmt"
	"strings"

	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
)

// BuildPrompt writes the analyst brief sent to the model
func BuildPrompt(stats types.Statistics) string {
	var b strings.Builder

	b.WriteString("En tant que MtSAV, Data Analyst Senior expert en tickets SAV Télécom (ADSL, Fibre, VPN, VoIP, RTC), ")
	b.WriteString("analyse les statistiques suivantes pour le secteur de Taroudant et fournis des recommandations stratégiques.\n\n")

	b.WriteString("CONTEXTE :\n")
	fmt.Fprintf(&b, "- L'objectif (Target) de respect du SLA est fixé à %.0f%%.\n", sla.Target)
	b.WriteString("- Pour les tickets concernant le produit \"RTC\", il est établi que le réseau et le câblage sont vieillissants ")
	b.WriteString("et nécessitent une maintenance curative et préventive accrue.\n\n")

	b.WriteString("STATISTIQUES GLOBALES :\n")
	fmt.Fprintf(&b, "- Total de tickets : %d\n", stats.TotalTickets)
	fmt.Fprintf(&b, "- Taux de respect SLA actuel : %.2f%% (Cible : %.0f%%)\n", stats.SLARate, sla.Target)
	fmt.Fprintf(&b, "- Délai moyen de traitement : %.2f jours\n\n", stats.AvgDelay)

	b.WriteString("TOP PRODUITS :\n")
	for _, p := range stats.TicketsPerProduct {
		fmt.Fprintf(&b, "- %s: %d tickets\n", p.Name, p.Value)
	}
	b.WriteString("\n")

	b.WriteString("TOP SECTEURS (VOLUME) :\n")
	for _, s := range stats.TicketsPerSecteur {
		fmt.Fprintf(&b, "- %s: %d tickets (Moyenne délai: %.2fj)\n", s.Name, s.Total, s.Delay)
	}
	b.WriteString("\n")

	b.WriteString("Ta réponse doit être structurée en français avec les sections suivantes :\n")
	fmt.Fprintf(&b, "1. Analyse de la performance globale par rapport à l'objectif de %.0f%%.\n", sla.Target)
	b.WriteString("2. Focus sur le produit RTC : souligner impérativement la problématique de vétusté du câblage et la nécessité de maintenance.\n")
	b.WriteString("3. Identification des goulots d'étranglement par zone technique.\n")
	b.WriteString("4. Plan d'action managérial et alertes prioritaires.\n\n")
	b.WriteString("Style professionnel, technique, direct et orienté décisionnel.\n")

	return b.String()
}
