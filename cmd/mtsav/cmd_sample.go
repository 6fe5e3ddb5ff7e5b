package main

import (
	"fmt"
	"os"
	"time"

	"github.com/heroual/MTSAV/internal/sample"
	"github.com/spf13/cobra"
)

var (
	sampleOut  string
	sampleRows int
	sampleSeed int64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic export workbook",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "sample.xlsx", "Output .xlsx file")
	sampleCmd.Flags().IntVarP(&sampleRows, "rows", "n", 1000, "Number of tickets")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", time.Now().UnixNano(), "Random seed")
}

func runSample(cmd *cobra.Command, args []string) error {
	if sampleRows <= 0 {
		return fmt.Errorf("--rows must be positive, got %d", sampleRows)
	}

	err := writeFile(sampleOut, func(f *os.File) error {
		return sample.NewGenerator(sampleSeed).Workbook(f, sampleRows)
	})
	if err != nil {
		return err
	}

	logger.Info().Str("file", sampleOut).Int("rows", sampleRows).Int64("seed", sampleSeed).Msg("sample written")
	fmt.Fprintln(cmd.OutOrStdout(), sampleOut)
	return nil
}
