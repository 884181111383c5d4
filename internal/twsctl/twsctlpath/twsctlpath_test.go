// Copyright 2026 Peter Edge
//
// All rights reserved.

package twsctlpath

import (
	"path/filepath"
	"testing"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/stretchr/testify/require"
)

func TestBucketName(t *testing.T) {
	t.Parallel()
	// Weekly and daily names ignore the year.
	require.Equal(t, "AAPL-SMART-weekly", BucketName("AAPL", "SMART", 2024, twsctlbar.TimespanWeekly))
	require.Equal(t, "AAPL-SMART-daily", BucketName("AAPL", "SMART", 0, twsctlbar.TimespanDaily))
	// Hourly names carry the year.
	require.Equal(t, "AAPL-SMART-2024-hourly", BucketName("AAPL", "SMART", 2024, twsctlbar.TimespanHourly))
	// Class shares keep the space in the name.
	require.Equal(t, "BRK B-NYSE-weekly", BucketName("BRK B", "NYSE", 0, twsctlbar.TimespanWeekly))
}

func TestFilePaths(t *testing.T) {
	t.Parallel()
	require.Equal(t, filepath.Join("data", "AAPL-SMART-weekly.csv.gz"), CSVFilePath("data", "AAPL-SMART-weekly"))
	require.Equal(t, filepath.Join("data", SQLiteFileName), SQLiteFilePath("data"))
}
