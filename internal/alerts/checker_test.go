package alerts

import (
	"testing"

	"github.com/heroual/MTSAV/internal/types"
)

func rules(alerts []types.KPIAlert) map[string]types.AlertSeverity {
	out := make(map[string]types.AlertSeverity, len(alerts))
	for _, a := range alerts {
		out[a.Rule] = a.Severity
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		stats types.Statistics
		want  map[string]types.AlertSeverity
	}{
		{
			name:  "empty set",
			stats: types.Statistics{},
			want:  map[string]types.AlertSeverity{},
		},
		{
			name:  "healthy",
			stats: types.Statistics{TotalTickets: 10, RespectedSLA: 10, SLARate: 100, AvgDelay: 0.3},
			want:  map[string]types.AlertSeverity{},
		},
		{
			name: "sla warning with exceeded tickets",
			stats: types.Statistics{
				TotalTickets: 10, RespectedSLA: 7, ExceededSLA: 3, SLARate: 70, AvgDelay: 0.9,
			},
			want: map[string]types.AlertSeverity{
				"sla_below_target": types.SeverityWarning,
				"critical_tickets": types.SeverityCritical,
			},
		},
		{
			name: "everything wrong",
			stats: types.Statistics{
				TotalTickets: 10, RespectedSLA: 4, ExceededSLA: 6, SLARate: 40, AvgDelay: 2.2,
				ReopenedTickets: 1, ReopenedRate: 10,
			},
			want: map[string]types.AlertSeverity{
				"sla_below_target": types.SeverityCritical,
				"avg_delay_high":   types.SeverityWarning,
				"critical_tickets": types.SeverityCritical,
				"reopen_rate_high": types.SeverityWarning,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules(Check(tt.stats))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d alerts, got %d (%v)", len(tt.want), len(got), got)
			}
			for rule, sev := range tt.want {
				if got[rule] != sev {
					t.Errorf("rule %s: expected severity %s, got %s", rule, sev, got[rule])
				}
			}
		})
	}
}

func TestCheckMessages(t *testing.T) {
	alerts := Check(types.Statistics{TotalTickets: 4, ExceededSLA: 2, RespectedSLA: 2, SLARate: 50})
	for _, a := range alerts {
		if a.Message == "" {
			t.Errorf("rule %s has an empty message", a.Rule)
		}
	}
}
