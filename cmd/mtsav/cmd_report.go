package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportOut string
	reportCSV bool
)

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Write the executive PDF report of an export",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	addFilterFlags(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", ".", "Output directory")
	reportCmd.Flags().BoolVar(&reportCSV, "csv", false, "Also write the CSV extract")
}

func runReport(cmd *cobra.Command, args []string) error {
	tickets, fs, err := loadTickets(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(reportOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now()
	pdfPath := filepath.Join(reportOut, report.Filename(now))
	err = writeFile(pdfPath, func(f *os.File) error {
		return report.WritePDF(f, report.Input{
			Stats:       aggregator.Calculate(tickets),
			Tickets:     tickets,
			Filters:     fs,
			GeneratedAt: now,
		})
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pdfPath)

	if reportCSV {
		csvPath := filepath.Join(reportOut, report.CSVFilename(now))
		if err := writeFile(csvPath, func(f *os.File) error { return report.WriteCSV(f, tickets) }); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), csvPath)
	}
	return nil
}

// writeFile creates path and removes it again when write fails
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
