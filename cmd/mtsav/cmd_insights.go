package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/insights"
	"github.com/heroual/MTSAV/internal/report"
	"github.com/spf13/cobra"
)

var (
	insightsModel   string
	insightsTimeout time.Duration
	insightsRaw     bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights FILE",
	Short: "Ask the language model to comment the KPIs of an export",
	Long: `Sends the aggregated statistics (never the tickets themselves) to Gemini
and renders the answer as markdown. The key is read from GEMINI_API_KEY or API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsights,
}

func init() {
	addFilterFlags(insightsCmd)
	insightsCmd.Flags().StringVar(&insightsModel, "model", insights.DefaultModel, "Gemini model")
	insightsCmd.Flags().DurationVar(&insightsTimeout, "timeout", insights.DefaultTimeout, "Generation timeout")
	insightsCmd.Flags().BoolVar(&insightsRaw, "raw", false, "Print the answer without markdown rendering")
}

func apiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("API_KEY")
}

func runInsights(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tickets, _, err := loadTickets(ctx, args[0])
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return report.ErrNoTickets
	}

	model, err := insights.NewModel(ctx, apiKey(), insightsModel)
	if err != nil {
		return err
	}
	insight := insights.NewService(model, insightsTimeout, logger).Generate(ctx, aggregator.Calculate(tickets))

	out := insight.Text
	if !insightsRaw {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			if rendered, err := renderer.Render(insight.Text); err == nil {
				out = rendered
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
