// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlfetch adapts the Client Portal Gateway client to the
// backfill Fetcher interface, resolving instruments to contract ids and
// mapping timespans to gateway bar parameters.
package twsctlfetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bufdev/twsctl/internal/pkg/ibgateway"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbackfill"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
)

// NewFetcher creates a new twsctlbackfill.Fetcher backed by the gateway client.
func NewFetcher(logger *slog.Logger, client ibgateway.Client) twsctlbackfill.Fetcher {
	return &fetcher{
		logger: logger,
		client: client,
		conids: make(map[conidKey]int64),
	}
}

// *** PRIVATE ***

type conidKey struct {
	symbol   string
	exchange string
}

type fetcher struct {
	logger *slog.Logger
	client ibgateway.Client
	// conids caches contract resolutions so each instrument is resolved once
	// per run regardless of how many buckets it needs.
	conids map[conidKey]int64
}

func (f *fetcher) FetchBars(
	ctx context.Context,
	instrument twsctluniverse.Instrument,
	end time.Time,
	period string,
	timespan twsctlbar.Timespan,
) ([]twsctlbar.Bar, error) {
	conid, err := f.resolveConid(ctx, instrument)
	if err != nil {
		return nil, err
	}
	if conid == 0 {
		// The gateway knows no such contract; treat it like an empty fetch
		// so the instrument is skipped rather than aborting the run.
		f.logger.Warn("no contract found",
			"symbol", instrument.Symbol,
			"exchange", instrument.Exchange,
		)
		return nil, nil
	}
	barSize, err := barSizeForTimespan(timespan)
	if err != nil {
		return nil, err
	}
	// Regular trading hours only; extended-hours bars are sparse and skew
	// the OHLC aggregates.
	gatewayBars, err := f.client.HistoricalBars(ctx, conid, end, period, barSize, true)
	if err != nil {
		return nil, err
	}
	bars := make([]twsctlbar.Bar, len(gatewayBars))
	for i, gatewayBar := range gatewayBars {
		bars[i] = twsctlbar.Bar{
			Time:   gatewayBar.Time,
			Open:   gatewayBar.Open,
			High:   gatewayBar.High,
			Low:    gatewayBar.Low,
			Close:  gatewayBar.Close,
			Volume: gatewayBar.Volume,
		}
	}
	return bars, nil
}

func (f *fetcher) resolveConid(ctx context.Context, instrument twsctluniverse.Instrument) (int64, error) {
	key := conidKey{symbol: instrument.Symbol, exchange: instrument.Exchange}
	if conid, ok := f.conids[key]; ok {
		return conid, nil
	}
	conid, err := f.client.ResolveContract(ctx, instrument.Symbol, instrument.SecType, instrument.Exchange)
	if err != nil {
		return 0, err
	}
	f.conids[key] = conid
	return conid, nil
}

func barSizeForTimespan(timespan twsctlbar.Timespan) (string, error) {
	switch timespan {
	case twsctlbar.TimespanWeekly:
		return "1w", nil
	case twsctlbar.TimespanDaily:
		return "1d", nil
	case twsctlbar.TimespanHourly:
		return "1h", nil
	default:
		return "", fmt.Errorf("unknown timespan %q", timespan)
	}
}
