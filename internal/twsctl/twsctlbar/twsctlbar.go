// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlbar defines the bar data model shared by the fetch,
// planning, and persistence layers.
package twsctlbar

import (
	"fmt"
	"time"
)

// Timespan is the bar aggregation size of a bucket.
type Timespan string

const (
	// TimespanWeekly is one bar per week.
	TimespanWeekly Timespan = "weekly"
	// TimespanDaily is one bar per day.
	TimespanDaily Timespan = "daily"
	// TimespanHourly is one bar per hour.
	TimespanHourly Timespan = "hourly"
)

// ParseTimespan parses a string into a Timespan, returning an error for unknown values.
func ParseTimespan(s string) (Timespan, error) {
	switch Timespan(s) {
	case TimespanWeekly, TimespanDaily, TimespanHourly:
		return Timespan(s), nil
	default:
		return "", fmt.Errorf("unknown timespan %q, must be one of: weekly, daily, hourly", s)
	}
}

// OneTable reports whether buckets of this timespan span all history in a
// single table. Weekly and daily data is kept in one continuously refreshed
// table per instrument; hourly data is stored per calendar year.
func (t Timespan) OneTable() bool {
	return t != TimespanHourly
}

// Bar is one OHLCV row of a bucket. Time is the interval start.
//
// Bars are produced by the fetch layer and persisted verbatim; no
// validation or arithmetic is performed on them downstream.
type Bar struct {
	// Time is the interval start.
	Time time.Time
	// Open is the opening price.
	Open float64
	// High is the highest price of the interval.
	High float64
	// Low is the lowest price of the interval.
	Low float64
	// Close is the closing price.
	Close float64
	// Volume is the traded volume of the interval.
	Volume float64
}
