package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/alerts"
	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Print the KPIs of an export",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	addFilterFlags(statsCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0F172A")).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).Width(28)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1).Foreground(lipgloss.Color("#1E40AF"))

	toneStyles = map[types.Tone]lipgloss.Style{
		types.ToneGreen: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		types.ToneAmber: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		types.ToneRed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
	}
	plainValue = lipgloss.NewStyle().Bold(true)
)

func runStats(cmd *cobra.Command, args []string) error {
	tickets, fs, err := loadTickets(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	stats := aggregator.Calculate(tickets)
	printStats(cmd.OutOrStdout(), stats, fs)
	return nil
}

func printStats(w io.Writer, stats types.Statistics, fs types.FilterState) {
	tones := sla.Tones(stats)

	fmt.Fprintln(w, titleStyle.Render("MtSAV-Taroudant"))
	fmt.Fprintln(w, filter.Label(fs))
	fmt.Fprintln(w)

	kpi := func(label, value string, style lipgloss.Style) {
		fmt.Fprintln(w, labelStyle.Render(label)+style.Render(value))
	}
	kpi("Tickets", fmt.Sprintf("%d", stats.TotalTickets), plainValue)
	kpi("Taux SLA", fmt.Sprintf("%.1f%%", stats.SLARate), toneStyles[tones.SLARate])
	kpi("Hors délai", fmt.Sprintf("%d", stats.ExceededSLA), plainValue)
	kpi("Délai moyen", fmt.Sprintf("%.2f j", stats.AvgDelay), toneStyles[tones.AvgDelay])
	kpi("Réouvertures", fmt.Sprintf("%d (%.1f%%)", stats.ReopenedTickets, stats.ReopenedRate), toneStyles[tones.ReopenedRate])

	if alertsList := alerts.Check(stats); len(alertsList) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Alertes"))
		for _, a := range alertsList {
			style := toneStyles[types.ToneAmber]
			if a.Severity == types.SeverityCritical {
				style = toneStyles[types.ToneRed]
			}
			fmt.Fprintln(w, style.Render("• "+a.Message))
		}
	}

	fmt.Fprintln(w, sectionStyle.Render("Par produit"))
	for _, nv := range stats.TicketsPerProduct {
		fmt.Fprintln(w, labelStyle.Render(nv.Name)+fmt.Sprintf("%d", nv.Value))
	}

	fmt.Fprintln(w, sectionStyle.Render("Top motifs"))
	for _, nv := range stats.TicketsPerMotif {
		fmt.Fprintln(w, labelStyle.Render(truncate(nv.Name, 26))+fmt.Sprintf("%d", nv.Value))
	}

	fmt.Fprintln(w, sectionStyle.Render("Secteurs"))
	for _, g := range stats.TicketsPerSecteur {
		fmt.Fprintln(w, labelStyle.Render(g.Name)+fmt.Sprintf("%d  (%.2f j)", g.Total, g.Delay))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
