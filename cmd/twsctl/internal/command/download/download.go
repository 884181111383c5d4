// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package download implements the "download" command.
package download

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app"
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/twsctlcmd"
	"github.com/bufdev/twsctl/internal/pkg/barsql"
	"github.com/bufdev/twsctl/internal/standard/xos"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlbackfill"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlconfig"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlfetch"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlpath"
	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
	"github.com/spf13/pflag"
)

const (
	// dataDirFlagName is the flag name for the data directory.
	dataDirFlagName = "data-dir"
	// hourlyFlagName is the flag name for requesting hourly bars for all instruments.
	hourlyFlagName = "hourly"
	// forceRefreshFlagName is the flag name for refetching existing hourly buckets.
	forceRefreshFlagName = "force-refresh"
	// universeFlagName is the flag name for selecting universes to download.
	universeFlagName = "universe"

	// missingDataDirExitCode is the process exit code when the data directory
	// does not exist.
	missingDataDirExitCode = 3
)

// NewCommand returns a new download command that downloads historical bars
// for the selected universes.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Download historical OHLCV data for the instrument universes",
		Long: `Download historical OHLCV data for the instrument universes.

Weekly and daily bars are refetched in full on every run. Hourly bars are
downloaded one calendar year at a time, newest first, and a year that is
already on disk is skipped, so interrupted runs resume where they left off.

Data is written as gzip CSV files and as tables in a SQLite database under
the data directory. The data directory must already exist.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Host is the Client Portal Gateway host.
	Host string
	// Port is the Client Portal Gateway port.
	Port int
	// DataDir is the data directory. An explicit empty value disables the
	// CSV file backend.
	DataDir string
	// Hourly requests hourly bars for every instrument.
	Hourly bool
	// ForceRefresh refetches hourly buckets even when already persisted.
	ForceRefresh bool
	// Universes are the universes to download.
	Universes []string

	flagSet *pflag.FlagSet
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Host, twsctlcmd.HostFlagName, twsctlconfig.DefaultHost, "The Client Portal Gateway host")
	flagSet.IntVar(&f.Port, twsctlcmd.PortFlagName, twsctlconfig.DefaultPort, "The Client Portal Gateway port")
	flagSet.StringVar(&f.DataDir, dataDirFlagName, twsctlconfig.DefaultDataDirPath, "The data directory (must exist), empty disables CSV files")
	flagSet.BoolVar(&f.Hourly, hourlyFlagName, false, "Download hourly bars for every instrument")
	flagSet.BoolVar(&f.ForceRefresh, forceRefreshFlagName, false, "Refetch hourly buckets even if already downloaded")
	flagSet.StringSliceVar(&f.Universes, universeFlagName, nil, "Universes to download (dow30, sp500, nasdaq100, reits, custom, indices), may be repeated")
	// Keep the flag set so run can tell set flags from defaults when merging
	// with the config file.
	f.flagSet = flagSet
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := twsctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	// Flags take precedence over the config file when explicitly set.
	host := config.Host
	if flags.flagSet.Changed(twsctlcmd.HostFlagName) {
		host = flags.Host
	}
	port := config.Port
	if flags.flagSet.Changed(twsctlcmd.PortFlagName) {
		port = flags.Port
	}
	dataDirPath := config.DataDirPath
	if flags.flagSet.Changed(dataDirFlagName) {
		dataDirPath = flags.DataDir
	}
	universes, err := parseUniverses(flags.Universes)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	if dataDirPath == "" {
		// No data directory means neither backend has anywhere to write.
		return appcmd.NewInvalidArgumentError("no data directory configured, nothing to persist")
	}
	dataDirPath, err = xos.ExpandHome(dataDirPath)
	if err != nil {
		return err
	}
	exists, err := xos.DirExists(dataDirPath)
	if err != nil {
		return err
	}
	if !exists {
		return app.NewError(
			missingDataDirExitCode,
			fmt.Sprintf("directory %s does not exist, please create it", dataDirPath),
		)
	}
	logger := container.Logger()
	// Open the enabled persistence backends.
	csvDirPath := ""
	if config.CSV {
		csvDirPath = dataDirPath
	}
	var store barsql.Store
	if config.SQLite {
		store, err = barsql.NewStore(logger, twsctlpath.SQLiteFilePath(dataDirPath))
		if err != nil {
			return err
		}
		defer func() {
			retErr = errors.Join(retErr, store.Close())
		}()
	}
	if csvDirPath == "" && store == nil {
		return appcmd.NewInvalidArgumentError("both the csv and sqlite backends are disabled, nothing to persist")
	}
	cache, err := twsctlbackfill.NewCache(csvDirPath, store)
	if err != nil {
		return err
	}
	client, err := twsctlcmd.NewGatewayClient(ctx, container, host, port)
	if err != nil {
		return err
	}
	var plannerOptions []twsctlbackfill.PlannerOption
	if flags.ForceRefresh {
		plannerOptions = append(plannerOptions, twsctlbackfill.WithForceRefresh())
	}
	if flags.Hourly {
		plannerOptions = append(plannerOptions, twsctlbackfill.WithHourlyForAll())
	}
	planner := twsctlbackfill.NewPlanner(
		logger,
		twsctlfetch.NewFetcher(logger, client),
		cache,
		plannerOptions...,
	)
	for _, universe := range universes {
		for _, instrument := range instrumentsForUniverse(universe, config) {
			if err := planner.EnsureSymbolHistory(ctx, instrument); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseUniverses parses the --universe values, defaulting to the standard
// download set when none are given.
func parseUniverses(values []string) ([]twsctluniverse.Universe, error) {
	if len(values) == 0 {
		return twsctluniverse.DefaultUniverses, nil
	}
	universes := make([]twsctluniverse.Universe, 0, len(values))
	seen := make(map[twsctluniverse.Universe]bool)
	for _, value := range values {
		universe, err := twsctluniverse.ParseUniverse(value)
		if err != nil {
			return nil, err
		}
		if seen[universe] {
			continue
		}
		seen[universe] = true
		universes = append(universes, universe)
	}
	return universes, nil
}

// instrumentsForUniverse returns the instruments of the universe with the
// configured adjustments applied, including any configured extra custom symbols.
func instrumentsForUniverse(universe twsctluniverse.Universe, config *twsctlconfig.Config) []twsctluniverse.Instrument {
	instruments := twsctluniverse.Instruments(universe, config.Selection)
	if universe == twsctluniverse.UniverseCustom {
		for _, symbol := range config.CustomSymbols {
			symbol = twsctluniverse.NormalizeSymbol(symbol)
			if config.Selection.Exclude[symbol] {
				continue
			}
			exchange := twsctluniverse.ExchangeSmart
			if override, ok := config.Selection.ExchangeOverrides[symbol]; ok {
				exchange = override
			}
			instruments = append(instruments, twsctluniverse.Instrument{
				Symbol:   symbol,
				Exchange: exchange,
				Currency: "USD",
				SecType:  twsctluniverse.SecTypeStock,
				Hourly:   true,
			})
		}
	}
	return instruments
}
