// Copyright 2026 Peter Edge
//
// All rights reserved.

package twsctlfetch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bufdev/twsctl/internal/pkg/ibgateway"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbackfill"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
	"github.com/stretchr/testify/require"
)

func TestFetchBarsResolvesConidOnce(t *testing.T) {
	t.Parallel()
	client := &fakeGatewayClient{
		conids: map[string]int64{"AAPL": 265598},
		bars: []ibgateway.Bar{
			{Time: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2, Volume: 100},
		},
	}
	fetcher := newTestFetcher(client)
	instrument := twsctluniverse.Instrument{Symbol: "AAPL", Exchange: "SMART", Currency: "USD", SecType: twsctluniverse.SecTypeStock}
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	bars, err := fetcher.FetchBars(context.Background(), instrument, end, "1y", twsctlbar.TimespanHourly)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	require.Equal(t, 2.0, bars[0].Close)

	// A second fetch for the same instrument reuses the cached contract id.
	_, err = fetcher.FetchBars(context.Background(), instrument, end, "1y", twsctlbar.TimespanHourly)
	require.NoError(t, err)
	require.Equal(t, 1, client.resolveCalls)
	require.Equal(t, 2, client.historyCalls)
}

func TestFetchBarsBarSizes(t *testing.T) {
	t.Parallel()
	client := &fakeGatewayClient{conids: map[string]int64{"MSFT": 1}}
	fetcher := newTestFetcher(client)
	instrument := twsctluniverse.Instrument{Symbol: "MSFT", Exchange: "SMART", Currency: "USD", SecType: twsctluniverse.SecTypeStock}
	end := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for timespan, wantBarSize := range map[twsctlbar.Timespan]string{
		twsctlbar.TimespanWeekly: "1w",
		twsctlbar.TimespanDaily:  "1d",
		twsctlbar.TimespanHourly: "1h",
	} {
		_, err := fetcher.FetchBars(context.Background(), instrument, end, "40y", timespan)
		require.NoError(t, err)
		require.Equal(t, wantBarSize, client.lastBarSize)
	}
}

func TestFetchBarsUnknownContractReturnsEmpty(t *testing.T) {
	t.Parallel()
	client := &fakeGatewayClient{}
	fetcher := newTestFetcher(client)
	instrument := twsctluniverse.Instrument{Symbol: "NOPE", Exchange: "SMART", Currency: "USD", SecType: twsctluniverse.SecTypeStock}

	bars, err := fetcher.FetchBars(
		context.Background(),
		instrument,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		"40y",
		twsctlbar.TimespanWeekly,
	)
	require.NoError(t, err)
	require.Empty(t, bars)
	// No history request is made for an unknown contract.
	require.Equal(t, 0, client.historyCalls)
}

type fakeGatewayClient struct {
	conids       map[string]int64
	bars         []ibgateway.Bar
	resolveCalls int
	historyCalls int
	lastBarSize  string
}

func (f *fakeGatewayClient) AuthStatus(context.Context) (*ibgateway.AuthStatus, error) {
	return &ibgateway.AuthStatus{Authenticated: true, Connected: true}, nil
}

func (f *fakeGatewayClient) ResolveContract(_ context.Context, symbol string, _ string, _ string) (int64, error) {
	f.resolveCalls++
	return f.conids[symbol], nil
}

func (f *fakeGatewayClient) HistoricalBars(_ context.Context, _ int64, _ time.Time, _ string, barSize string, _ bool) ([]ibgateway.Bar, error) {
	f.historyCalls++
	f.lastBarSize = barSize
	return f.bars, nil
}

func (f *fakeGatewayClient) Accounts(context.Context) ([]ibgateway.Account, error) {
	return nil, nil
}

func (f *fakeGatewayClient) AccountSummary(context.Context, string) (ibgateway.Summary, error) {
	return nil, nil
}

func (f *fakeGatewayClient) Positions(context.Context, string) ([]ibgateway.Position, error) {
	return nil, nil
}

func (f *fakeGatewayClient) LiveOrders(context.Context) ([]ibgateway.Order, error) {
	return nil, nil
}

func newTestFetcher(client ibgateway.Client) twsctlbackfill.Fetcher {
	return NewFetcher(slog.New(slog.NewTextHandler(io.Discard, nil)), client)
}
