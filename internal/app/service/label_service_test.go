package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestLabelService_RateLimitedAddressBecomesPlaceholderRow(t *testing.T) {
	vendor := &fakeVendor{
		labels:      map[string]string{"0xA": `{"ethereum": {"address":"0xA","arkhamLabel":{"name":"Exchange"}}}`},
		rateLimited: map[string]bool{"0xB": true},
	}
	dir := t.TempDir()
	svc := NewLabelService(vendor, 5, dir, nopLogger{})
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) }

	report, err := svc.ExportLabels(context.Background(), []string{"0xA", "0xB"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "arkham_labels_20250102_030405.csv"), report.CSVPath)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	records := readRecords(t, report.CSVPath)
	require.Len(t, records, 3)
	rows := records[1:]
	// Completion order decides row order; the no column follows the output position.
	assert.Equal(t, "1", rows[0][0])
	assert.Equal(t, "2", rows[1][0])
	sort.Slice(rows, func(i, j int) bool { return rows[i][1] < rows[j][1] })
	assert.Equal(t, []string{"0xA", "", "", "Exchange", "False", "", "", "", ""}, rows[0][1:])
	assert.Equal(t, []string{"0xB", "", "", "", "False", "", "", "", ""}, rows[1][1:])
}

func TestLabelService_NoAddresses(t *testing.T) {
	svc := NewLabelService(&fakeVendor{}, 5, t.TempDir(), nopLogger{})
	_, err := svc.ExportLabels(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAddresses)
}

func TestLabelService_AllFailedCancelsExport(t *testing.T) {
	vendor := &fakeVendor{rateLimited: map[string]bool{"0xA": true, "0xB": true}}
	dir := t.TempDir()
	svc := NewLabelService(vendor, 2, dir, nopLogger{})

	report, err := svc.ExportLabels(context.Background(), []string{"0xA", "0xB"})
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Empty(t, report.CSVPath)
	assert.Equal(t, 2, report.Failed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
