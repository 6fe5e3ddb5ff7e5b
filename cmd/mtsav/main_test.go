package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/heroual/MTSAV/internal/insights"
	"github.com/heroual/MTSAV/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with fresh flag values
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	filterFlags = types.FilterState{}
	slaStatus, reopenFlag, mappingFile = "all", "all", ""
	reportCSV, insightsRaw = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xlsx")
	_, err := run(t, "sample", "--out", path, "--rows", strconv.Itoa(rows), "--seed", "3")
	require.NoError(t, err)
	return path
}

func TestSampleAndStats(t *testing.T) {
	path := writeSample(t, 200)

	out, err := run(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "FILTRES ACTIFS : CONSOLIDÉ")
	assert.Contains(t, out, "200")
	assert.Contains(t, out, "Taroudant")

	out, err = run(t, "stats", path, "--sla", "respected")
	require.NoError(t, err)
	assert.Contains(t, out, "CONFORME SLA")
}

func TestStatsInvalidStatus(t *testing.T) {
	path := writeSample(t, 10)

	_, err := run(t, "stats", path, "--sla", "sometimes")
	assert.Error(t, err)
}

func TestStatsMissingFile(t *testing.T) {
	_, err := run(t, "stats", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	path := writeSample(t, 200)
	dir := t.TempDir()

	out, err := run(t, "report", path, "--out", dir, "--csv")
	require.NoError(t, err)

	files := strings.Fields(out)
	require.Len(t, files, 2)
	pdf, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.FileExists(t, files[1])
}

func TestReportWithoutTickets(t *testing.T) {
	path := writeSample(t, 200)
	dir := t.TempDir()

	_, err := run(t, "report", path, "--out", dir, "--search", "no-such-ticket")
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed reports leave no file behind")
}

func TestInsightsWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	path := writeSample(t, 200)

	out, err := run(t, "insights", path, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, insights.MsgNoAPIKey)
}

func TestMappingFlag(t *testing.T) {
	path := writeSample(t, 200)
	mapping := filepath.Join(t.TempDir(), "sectors.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("sectors:\n  Igherm: [AIG-IGH00, AIG-IGH31]\n"), 0o644))

	out, err := run(t, "stats", path, "--mapping", mapping)
	require.NoError(t, err)
	assert.Contains(t, out, "Taroudant")
}
