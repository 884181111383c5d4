// Copyright 2026 Peter Edge
//
// All rights reserved.

package barcsv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "AAPL-SMART-weekly.csv.gz")
	bars := []twsctlbar.Bar{
		{
			Time:   time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
			Open:   185.5,
			High:   188.25,
			Low:    183,
			Close:  186.125,
			Volume: 123456789,
		},
		{
			Time:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			Open:   186.125,
			High:   190,
			Low:    185.5,
			Close:  189.75,
			Volume: 98765432,
		},
	}
	require.NoError(t, WriteFile(filePath, bars))
	require.True(t, FileExists(filePath))

	read, err := ReadFile(filePath)
	require.NoError(t, err)
	if diff := cmp.Diff(bars, read); diff != "" {
		t.Fatalf("bars changed through the round trip:\n%s", diff)
	}
}

func TestWriteFileReplacesExisting(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "MSFT-SMART-daily.csv.gz")
	first := []twsctlbar.Bar{
		{Time: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10},
	}
	require.NoError(t, WriteFile(filePath, first))
	second := []twsctlbar.Bar{
		{Time: time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), Open: 3, High: 4, Low: 3, Close: 4, Volume: 20},
		{Time: time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), Open: 4, High: 5, Low: 4, Close: 5, Volume: 30},
	}
	require.NoError(t, WriteFile(filePath, second))

	read, err := ReadFile(filePath)
	require.NoError(t, err)
	require.Equal(t, second, read)
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dirPath, "A-NYSE-weekly.csv.gz"), nil))

	entries, err := os.ReadDir(dirPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "A-NYSE-weekly.csv.gz", entries[0].Name())
}

func TestReadFileRejectsMalformedRow(t *testing.T) {
	t.Parallel()
	filePath := filepath.Join(t.TempDir(), "bad.csv.gz")
	require.NoError(t, WriteFile(filePath, []twsctlbar.Bar{
		{Time: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
	}))
	// Truncate the file so the gzip stream is invalid.
	require.NoError(t, os.WriteFile(filePath, []byte("not gzip"), 0o644))
	_, err := ReadFile(filePath)
	require.Error(t, err)
}

func TestFileExists(t *testing.T) {
	t.Parallel()
	require.False(t, FileExists(filepath.Join(t.TempDir(), "missing.csv.gz")))
}
