// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlbackfill implements the incremental historical-data backfill.
//
// For every instrument, the weekly and daily buckets cover the full history
// in one table each and are refetched and overwritten on every run; markets
// add new weeks and days continuously and the full span is cheap to download.
// Hourly buckets are one per calendar year, walked backward from the current
// year, and once written are final: an existing hourly bucket is never
// refetched unless force-refresh is set. Hourly bars are only requested for
// years at or after the upstream availability floor.
package twsctlbackfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bufdev/twsctl/internal/pkg/barcsv"
	"github.com/bufdev/twsctl/internal/pkg/barsql"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlpath"
	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
)

const (
	// hourlyCutoffYear is the first year the upstream provider serves hourly
	// bars for; the backward walk never goes below it.
	hourlyCutoffYear = 2004
	// defaultEarliestYear is the earliest-data fallback when the weekly
	// bucket cannot be read to anchor the walk.
	defaultEarliestYear = 1980
	// fullHistoryPeriod is the fetch period for the weekly and daily buckets.
	fullHistoryPeriod = "40y"
	// yearPeriod is the fetch period for one hourly bucket.
	yearPeriod = "1y"
)

// Fetcher fetches bars for an instrument from the market data provider.
type Fetcher interface {
	// FetchBars fetches bars of the given timespan for the instrument, with
	// the period extending backward from end. An empty result with a nil
	// error means the provider has no data for the request; transport
	// failures are returned as errors.
	FetchBars(
		ctx context.Context,
		instrument twsctluniverse.Instrument,
		end time.Time,
		period string,
		timespan twsctlbar.Timespan,
	) ([]twsctlbar.Bar, error)
}

// Planner drives the backfill for instruments.
type Planner interface {
	// EnsureSymbolHistory brings the persisted history of the instrument up
	// to date: weekly and daily buckets are refetched and overwritten, and
	// if hourly bars are requested, missing per-year hourly buckets are
	// fetched walking backward from the current year.
	//
	// A fetch that returns no data is logged and skipped so the bucket can
	// be retried on a future run; fetch errors abort the run.
	EnsureSymbolHistory(ctx context.Context, instrument twsctluniverse.Instrument) error
}

// PlannerOption is an option for a new Planner.
type PlannerOption func(*planner)

// WithForceRefresh refetches hourly buckets even when they are already persisted.
func WithForceRefresh() PlannerOption {
	return func(p *planner) {
		p.forceRefresh = true
	}
}

// WithHourlyForAll requests hourly bars for every instrument, not just those
// whose universe marks them for hourly download.
func WithHourlyForAll() PlannerOption {
	return func(p *planner) {
		p.hourlyForAll = true
	}
}

// WithClock overrides the clock used to determine the current year.
func WithClock(clock func() time.Time) PlannerOption {
	return func(p *planner) {
		p.clock = clock
	}
}

// NewPlanner creates a new Planner.
func NewPlanner(logger *slog.Logger, fetcher Fetcher, cache *Cache, options ...PlannerOption) Planner {
	p := &planner{
		logger:  logger,
		fetcher: fetcher,
		cache:   cache,
		clock:   time.Now,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Cache tracks which buckets are already persisted and writes new ones.
//
// The table-name registry is loaded once from the SQLite store at
// construction; existence checks are answered from the registry and the
// filesystem, never by re-querying the database. Either backend may be
// disabled: an empty dataDirPath disables the file backend, a nil store
// disables the SQLite backend.
type Cache struct {
	dataDirPath string
	store       barsql.Store
	tableNames  map[string]bool
}

// NewCache creates a new Cache, loading the table-name registry from the
// store if one is given.
func NewCache(dataDirPath string, store barsql.Store) (*Cache, error) {
	tableNames := make(map[string]bool)
	if store != nil {
		names, err := store.TableNames()
		if err != nil {
			return nil, fmt.Errorf("loading table registry: %w", err)
		}
		for _, name := range names {
			tableNames[name] = true
		}
	}
	return &Cache{
		dataDirPath: dataDirPath,
		store:       store,
		tableNames:  tableNames,
	}, nil
}

// BucketExists reports whether any enabled backend has the bucket.
func (c *Cache) BucketExists(bucketName string) bool {
	if c.dataDirPath != "" && barcsv.FileExists(twsctlpath.CSVFilePath(c.dataDirPath, bucketName)) {
		return true
	}
	if c.store != nil && c.tableNames[bucketName] {
		return true
	}
	return false
}

// WriteBucket writes the bars to every enabled backend, replacing any
// existing content, and records the bucket in the registry.
func (c *Cache) WriteBucket(bucketName string, bars []twsctlbar.Bar) error {
	if c.dataDirPath != "" {
		if err := barcsv.WriteFile(twsctlpath.CSVFilePath(c.dataDirPath, bucketName), bars); err != nil {
			return fmt.Errorf("writing bucket %s: %w", bucketName, err)
		}
	}
	if c.store != nil {
		if err := c.store.ReplaceBucket(bucketName, bars); err != nil {
			return fmt.Errorf("writing bucket %s: %w", bucketName, err)
		}
		c.tableNames[bucketName] = true
	}
	return nil
}

// EarliestAvailableYear returns the year of the earliest bar in the
// persisted weekly bucket of the instrument. The weekly bucket must already
// have been written; this anchors the backward hourly walk.
func (c *Cache) EarliestAvailableYear(symbol string, exchange string) (int, error) {
	bucketName := twsctlpath.BucketName(symbol, exchange, 0, twsctlbar.TimespanWeekly)
	if c.dataDirPath != "" {
		bars, err := barcsv.ReadFile(twsctlpath.CSVFilePath(c.dataDirPath, bucketName))
		if err != nil {
			return 0, fmt.Errorf("reading weekly bucket for %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			return 0, fmt.Errorf("weekly bucket for %s is empty", symbol)
		}
		return bars[0].Time.UTC().Year(), nil
	}
	if c.store != nil {
		earliest, err := c.store.EarliestBarTime(bucketName)
		if err != nil {
			return 0, fmt.Errorf("reading weekly bucket for %s: %w", symbol, err)
		}
		return earliest.UTC().Year(), nil
	}
	return 0, fmt.Errorf("no backend enabled to read weekly bucket for %s", symbol)
}

// *** PRIVATE ***

type planner struct {
	logger       *slog.Logger
	fetcher      Fetcher
	cache        *Cache
	forceRefresh bool
	hourlyForAll bool
	clock        func() time.Time
}

func (p *planner) EnsureSymbolHistory(ctx context.Context, instrument twsctluniverse.Instrument) error {
	currentYear := p.clock().UTC().Year()
	// 1. Always refetch and overwrite the full-span weekly and daily buckets.
	weeklyBars, err := p.fetchAndWrite(ctx, instrument, currentYear, twsctlbar.TimespanWeekly, fullHistoryPeriod)
	if err != nil {
		return err
	}
	if len(weeklyBars) == 0 {
		// No data at all for this instrument; nothing more to do, and the
		// next run will try again.
		p.logger.Warn("no weekly data, skipping instrument",
			"symbol", instrument.Symbol,
			"exchange", instrument.Exchange,
		)
		return nil
	}
	if _, err := p.fetchAndWrite(ctx, instrument, currentYear, twsctlbar.TimespanDaily, fullHistoryPeriod); err != nil {
		return err
	}
	if !instrument.Hourly && !p.hourlyForAll {
		return nil
	}
	// 2. Anchor the backward walk at the earliest year the weekly bucket shows.
	earliestYear, err := p.cache.EarliestAvailableYear(instrument.Symbol, instrument.Exchange)
	if err != nil {
		p.logger.Warn("could not determine earliest year, using default",
			"symbol", instrument.Symbol,
			"error", err,
			"default", defaultEarliestYear,
		)
		earliestYear = defaultEarliestYear
	}
	stopYear := earliestYear
	if stopYear < hourlyCutoffYear {
		stopYear = hourlyCutoffYear
	}
	// 3. Walk backward, fetching only the hourly buckets not yet persisted.
	for year := currentYear; year >= stopYear; year-- {
		bucketName := twsctlpath.BucketName(instrument.Symbol, instrument.Exchange, year, twsctlbar.TimespanHourly)
		if !p.forceRefresh && p.cache.BucketExists(bucketName) {
			continue
		}
		if _, err := p.fetchAndWrite(ctx, instrument, year, twsctlbar.TimespanHourly, yearPeriod); err != nil {
			return err
		}
	}
	return nil
}

// fetchAndWrite fetches one bucket ending at the start of year+1 and
// persists it if non-empty. Empty results are logged and skipped so the
// bucket is retried on a future run.
func (p *planner) fetchAndWrite(
	ctx context.Context,
	instrument twsctluniverse.Instrument,
	year int,
	timespan twsctlbar.Timespan,
	period string,
) ([]twsctlbar.Bar, error) {
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars, err := p.fetcher.FetchBars(ctx, instrument, end, period, timespan)
	if err != nil {
		return nil, err
	}
	bucketName := twsctlpath.BucketName(instrument.Symbol, instrument.Exchange, year, timespan)
	if len(bars) == 0 {
		p.logger.Warn("no data for bucket, skipping",
			"bucket", bucketName,
		)
		return nil, nil
	}
	p.logger.Info("writing bucket",
		"bucket", bucketName,
		"bars", len(bars),
	)
	if err := p.cache.WriteBucket(bucketName, bars); err != nil {
		return nil, err
	}
	return bars, nil
}
