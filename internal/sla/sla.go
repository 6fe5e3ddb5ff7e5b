package sla

import "github.com/heroual/MTSAV/internal/types"

const (
	// Threshold is the resolution delay, in days, a ticket must stay under
	Threshold = 1.0
	// Target is the expected share of tickets within Threshold
	Target = 75.0
	// DelayLimit is the highest acceptable average delay in days
	DelayLimit = 1.5
	// ReopenLimit is the highest acceptable reopen rate
	ReopenLimit = 5.0
	// warningFloor separates a missed target from a critical one
	warningFloor = 60.0
)

// Respected reports whether a delay meets the SLA
func Respected(delayDays float64) bool {
	return delayDays < Threshold
}

// Tracker accumulates ticket delays for SLA reporting
type Tracker struct {
	Total    int
	InSLA    int
	DelaySum float64
	Reopened int
}

// Add records a normalised ticket using its own SLA flag
func (t *Tracker) Add(ticket types.Ticket) {
	t.Total++
	t.DelaySum += ticket.Delai
	if ticket.SLARespected {
		t.InSLA++
	}
	if ticket.IsReopened() {
		t.Reopened++
	}
}

// Rate returns the SLA compliance percentage
func (t *Tracker) Rate() float64 {
	return Percent(t.InSLA, t.Total)
}

// AvgDelay returns the mean delay in days
func (t *Tracker) AvgDelay() float64 {
	if t.Total == 0 {
		return 0
	}
	return t.DelaySum / float64(t.Total)
}

// ReopenRate returns the share of reopened tickets
func (t *Tracker) ReopenRate() float64 {
	return Percent(t.Reopened, t.Total)
}

// Percent returns part/total*100, or 0 for an empty total
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100.0
}

// RateTone classifies an SLA rate
func RateTone(rate float64) types.Tone {
	switch {
	case rate >= Target:
		return types.ToneGreen
	case rate > warningFloor:
		return types.ToneAmber
	default:
		return types.ToneRed
	}
}

// RateSeverity returns the alert severity for a rate under Target
func RateSeverity(rate float64) types.AlertSeverity {
	if rate > warningFloor {
		return types.SeverityWarning
	}
	return types.SeverityCritical
}

// DelayTone classifies an average delay
func DelayTone(avg float64) types.Tone {
	if avg < DelayLimit {
		return types.ToneGreen
	}
	return types.ToneRed
}

// ReopenTone classifies a reopen rate
func ReopenTone(rate float64) types.Tone {
	if rate < ReopenLimit {
		return types.ToneGreen
	}
	return types.ToneRed
}

// Tones returns the card tones for a statistics set
func Tones(s types.Statistics) types.KPITones {
	return types.KPITones{
		SLARate:      RateTone(s.SLARate),
		AvgDelay:     DelayTone(s.AvgDelay),
		ReopenedRate: ReopenTone(s.ReopenedRate),
	}
}
