package insights

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Messages returned instead of a narrative when generation is not possible
const (
	MsgNoAPIKey    = "Clé API non configurée. Impossible de générer des insights."
	MsgEmptyAnswer = "Désolé, je n'ai pas pu générer d'analyse pour le moment."
	MsgModelError  = "Une erreur est survenue lors de la génération des insights experts."
)

// DefaultTimeout bounds one generation request
const DefaultTimeout = 60 * time.Second

// Service produces the narrative for a statistics set
type Service struct {
	model   Model
	timeout time.Duration
	policy  *bluemonday.Policy
	now     func() time.Time
	logger  zerolog.Logger
}

// NewService creates a new insights service. A nil model yields the
// "no API key" message on every call.
func NewService(model Model, timeout time.Duration, logger zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		model:   model,
		timeout: timeout,
		policy:  bluemonday.StrictPolicy(),
		now:     time.Now,
		logger:  logger.With().Str("component", "insights").Logger(),
	}
}

// Enabled reports whether a model is configured
func (s *Service) Enabled() bool {
	return s.model != nil
}

// Generate asks the model for a narrative. It never fails: every problem is
// logged and turned into one of the fixed French messages.
func (s *Service) Generate(ctx context.Context, stats types.Statistics) types.Insight {
	insight := types.Insight{GeneratedAt: s.now()}

	if s.model == nil {
		insight.Text = MsgNoAPIKey
		insight.Degraded = true
		metrics.Get().RecordInsights(true)
		return insight
	}
	insight.Model = s.model.Name()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.model.Generate(ctx, BuildPrompt(stats))
	switch {
	case err != nil:
		s.logger.Error().Err(err).Str("model", insight.Model).Msg("insights generation failed")
		insight.Text = MsgModelError
		insight.Degraded = true
	case strings.TrimSpace(text) == "":
		s.logger.Warn().Str("model", insight.Model).Msg("model returned an empty answer")
		insight.Text = MsgEmptyAnswer
		insight.Degraded = true
	default:
		insight.Text = s.sanitize(text)
		s.logger.Info().
			Str("model", insight.Model).
			Int("tickets", stats.TotalTickets).
			Dur("duration", time.Since(start)).
			Msg("insights generated")
	}

	metrics.Get().RecordInsights(insight.Degraded)
	return insight
}

// maxSanitizePasses bounds the strip/unescape loop on nested escaping
const maxSanitizePasses = 4

// sanitize strips any markup from the model output, keeping the text.
// Entities are decoded after stripping, so the pair runs until the text no
// longer changes; escaped markup would otherwise come back as live tags.
// Text that never settles is returned in its escaped form.
func (s *Service) sanitize(text string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.TrimSpace(text)
		}
		text = next
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}
