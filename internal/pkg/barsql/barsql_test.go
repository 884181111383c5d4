// Copyright 2026 Peter Edge
//
// All rights reserved.

package barsql

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/stretchr/testify/require"
)

func TestReplaceBucketAndTableNames(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	names, err := store.TableNames()
	require.NoError(t, err)
	require.Empty(t, names)

	bars := []twsctlbar.Bar{
		{Time: time.Date(2022, time.February, 7, 0, 0, 0, 0, time.UTC), Open: 10, High: 12, Low: 9, Close: 11, Volume: 500},
		{Time: time.Date(2022, time.February, 14, 0, 0, 0, 0, time.UTC), Open: 11, High: 13, Low: 10, Close: 12, Volume: 600},
	}
	require.NoError(t, store.ReplaceBucket("AAPL-SMART-weekly", bars))
	names, err = store.TableNames()
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL-SMART-weekly"}, names)

	// Replacing drops the old content entirely.
	replacement := []twsctlbar.Bar{
		{Time: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC), Open: 20, High: 22, Low: 19, Close: 21, Volume: 700},
	}
	require.NoError(t, store.ReplaceBucket("AAPL-SMART-weekly", replacement))
	earliest, err := store.EarliestBarTime("AAPL-SMART-weekly")
	require.NoError(t, err)
	require.Equal(t, replacement[0].Time, earliest)
}

func TestEarliestBarTime(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	bars := []twsctlbar.Bar{
		{Time: time.Date(2010, time.June, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Time: time.Date(2005, time.June, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
	}
	require.NoError(t, store.ReplaceBucket("MSFT-SMART-weekly", bars))

	earliest, err := store.EarliestBarTime("MSFT-SMART-weekly")
	require.NoError(t, err)
	require.Equal(t, 2005, earliest.Year())
}

func TestEarliestBarTimeEmptyTable(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	require.NoError(t, store.ReplaceBucket("GE-SMART-weekly", nil))
	_, err := store.EarliestBarTime("GE-SMART-weekly")
	require.Error(t, err)
}

func newTestStore(t *testing.T) Store {
	store, err := NewStore(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		filepath.Join(t.TempDir(), "twsctl.db"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}
