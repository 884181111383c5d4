// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlpath derives bucket names and file paths from the data directory.
// All naming is defined here so the file and SQLite backends agree on bucket keys.
//
// The data directory contains:
//
//	<symbol>-<exchange>-<timespan>.csv.gz         Weekly/daily full-history buckets
//	<symbol>-<exchange>-<year>-<timespan>.csv.gz  Hourly per-year buckets
//	twsctl.db                                     SQLite database (one table per bucket)
package twsctlpath

import (
	"fmt"
	"path/filepath"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
)

// SQLiteFileName is the well-known SQLite database file name within the data directory.
const SQLiteFileName = "twsctl.db"

// BucketName returns the bucket key for an instrument, year, and timespan.
//
// Weekly and daily buckets fold all years into one name; the year only
// appears for hourly buckets. The same name is used for the CSV file stem
// and the SQLite table.
func BucketName(symbol string, exchange string, year int, timespan twsctlbar.Timespan) string {
	if timespan.OneTable() {
		return fmt.Sprintf("%s-%s-%s", symbol, exchange, timespan)
	}
	return fmt.Sprintf("%s-%s-%d-%s", symbol, exchange, year, timespan)
}

// CSVFilePath returns the gzip CSV file path for a bucket within the data directory.
func CSVFilePath(dataDirPath string, bucketName string) string {
	return filepath.Join(dataDirPath, bucketName+".csv.gz")
}

// SQLiteFilePath returns the SQLite database file path within the data directory.
func SQLiteFilePath(dataDirPath string) string {
	return filepath.Join(dataDirPath, SQLiteFileName)
}
