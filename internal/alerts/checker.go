package alerts

import (
	"fmt"

	"github.com/heroual/MTSAV/internal/sla"
	"github.com/heroual/MTSAV/internal/types"
)

// Check evaluates the KPI alert rules against a statistics set.
// An empty set raises nothing.
func Check(stats types.Statistics) []types.KPIAlert {
	alerts := make([]types.KPIAlert, 0, 4)
	if stats.TotalTickets == 0 {
		return alerts
	}

	if stats.SLARate < sla.Target {
		alerts = append(alerts, types.KPIAlert{
			Rule:     "sla_below_target",
			Severity: sla.RateSeverity(stats.SLARate),
			Message:  fmt.Sprintf("Taux SLA %s sous l'objectif de %.0f%%", formatPercent(stats.SLARate), sla.Target),
		})
	}

	if stats.AvgDelay > sla.DelayLimit {
		alerts = append(alerts, types.KPIAlert{
			Rule:     "avg_delay_high",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Délai moyen de %.2f j au-delà de %.1f j", stats.AvgDelay, sla.DelayLimit),
		})
	}

	if stats.ExceededSLA > 0 {
		alerts = append(alerts, types.KPIAlert{
			Rule:     "critical_tickets",
			Severity: types.SeverityCritical,
			Message:  fmt.Sprintf("%d ticket(s) hors délai", stats.ExceededSLA),
		})
	}

	if stats.ReopenedRate >= sla.ReopenLimit {
		alerts = append(alerts, types.KPIAlert{
			Rule:     "reopen_rate_high",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("Taux de réouverture %s (%d RECL)", formatPercent(stats.ReopenedRate), stats.ReopenedTickets),
		})
	}

	return alerts
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
