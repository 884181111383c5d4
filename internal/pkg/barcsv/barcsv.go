// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package barcsv reads and writes OHLCV bar buckets as gzip-compressed CSV files.
//
// The file format is one header row "date,open,high,low,close,volume"
// followed by one row per bar, timestamps in RFC 3339 UTC. Files are
// replaced wholesale: writes go to a temporary file in the target directory
// which is renamed into place on success, so an interrupted write never
// leaves a truncated file that would pass a later existence check.
package barcsv

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bufdev/twsctl/internal/twsctl/twsctlbar"
)

// header is the CSV header row.
var header = []string{"date", "open", "high", "low", "close", "volume"}

// WriteFile writes bars to filePath as gzip CSV, replacing any existing file.
func WriteFile(filePath string, bars []twsctlbar.Bar) (retErr error) {
	dirPath := filepath.Dir(filePath)
	tmpFile, err := os.CreateTemp(dirPath, ".tmp-*.csv.gz")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := writeBars(tmpFile, bars); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filePath)
}

// ReadFile reads all bars from a gzip CSV file written by WriteFile.
func ReadFile(filePath string) (_ []twsctlbar.Bar, retErr error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	defer func() {
		retErr = errors.Join(retErr, gzipReader.Close())
	}()
	csvReader := csv.NewReader(gzipReader)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", filePath)
	}
	// Skip the header row.
	bars := make([]twsctlbar.Bar, 0, len(records)-1)
	for i, record := range records[1:] {
		bar, err := recordToBar(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filePath, i+2, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// FileExists reports whether a bucket file is present at filePath.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// *** PRIVATE ***

// writeBars writes the gzip CSV content for bars to the writer.
func writeBars(file *os.File, bars []twsctlbar.Bar) (retErr error) {
	gzipWriter := gzip.NewWriter(file)
	defer func() {
		retErr = errors.Join(retErr, gzipWriter.Close())
	}()
	csvWriter := csv.NewWriter(gzipWriter)
	if err := csvWriter.Write(header); err != nil {
		return err
	}
	for _, bar := range bars {
		if err := csvWriter.Write(barToRecord(bar)); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// barToRecord converts a bar to a CSV record.
func barToRecord(bar twsctlbar.Bar) []string {
	return []string{
		bar.Time.UTC().Format(time.RFC3339),
		formatFloat(bar.Open),
		formatFloat(bar.High),
		formatFloat(bar.Low),
		formatFloat(bar.Close),
		formatFloat(bar.Volume),
	}
}

// recordToBar converts a CSV record back to a bar.
func recordToBar(record []string) (twsctlbar.Bar, error) {
	if len(record) != len(header) {
		return twsctlbar.Bar{}, fmt.Errorf("expected %d columns, got %d", len(header), len(record))
	}
	barTime, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return twsctlbar.Bar{}, fmt.Errorf("parsing date %q: %w", record[0], err)
	}
	values := make([]float64, len(record)-1)
	for i, s := range record[1:] {
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return twsctlbar.Bar{}, fmt.Errorf("parsing %s %q: %w", header[i+1], s, err)
		}
		values[i] = value
	}
	return twsctlbar.Bar{
		Time:   barTime,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

// formatFloat formats a float without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
