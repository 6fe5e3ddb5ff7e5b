// Command mtsav analyses ticket exports from the command line: KPI tables,
// executive reports, AI commentary and synthetic sample workbooks.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/heroual/MTSAV/internal/filter"
	"github.com/heroual/MTSAV/internal/ingestion"
	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	mappingFile string
	filterFlags types.FilterState
	slaStatus   string
	reopenFlag  string

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "mtsav",
	Short: "Ticket analytics for the MtSAV-Taroudant customer service",
	Long: `mtsav reads the operator ticket export (.xlsx or .xls, headers on row 3)
and produces the same figures as the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&mappingFile, "mapping", "", "Sector mapping YAML file (default: built-in table)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(sampleCmd)
}

// addFilterFlags registers the dashboard filters on commands that read an export
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&filterFlags.Produit, "produit", nil, "Keep only these products")
	f.StringSliceVar(&filterFlags.Secteur, "secteur", nil, "Keep only these sectors")
	f.StringSliceVar(&filterFlags.ZR, "zr", nil, "Keep only these ZRs")
	f.StringSliceVar(&filterFlags.Motif, "motif", nil, "Keep only these closure motifs")
	f.StringSliceVar(&filterFlags.Type, "type", nil, "Keep only these ticket types")
	f.StringSliceVar(&filterFlags.Mois, "mois", nil, "Keep only these months (yyyy-MM)")
	f.StringVar(&slaStatus, "sla", "all", "SLA status: all, respected, exceeded")
	f.StringVar(&reopenFlag, "reopen", "all", "Reopen status: all, reopened, normal")
	f.StringVarP(&filterFlags.SearchQuery, "search", "q", "", "Free-text search on ND, ZR, motif, type and sector")
}

// loadTickets parses an export, applies the sector mapping and the filter flags
func loadTickets(ctx context.Context, path string) ([]types.Ticket, types.FilterState, error) {
	fs := filterFlags
	fs.StatusSLA = types.SLAStatus(slaStatus)
	fs.StatusReouverture = types.ReopenStatus(reopenFlag)
	fs, err := filter.Normalize(fs)
	if err != nil {
		return nil, fs, err
	}

	mapper := sectors.NewMapper()
	if mappingFile != "" {
		if mapper, err = sectors.LoadFile(mappingFile); err != nil {
			return nil, fs, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fs, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	result, err := ingestion.NewParser(logger).ParseFile(ctx, path, f)
	if err != nil {
		return nil, fs, err
	}

	return filter.Apply(mapper.Apply(result.Tickets), fs), fs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
