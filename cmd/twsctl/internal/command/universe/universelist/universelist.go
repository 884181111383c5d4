// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package universelist implements the "universe list" command.
package universelist

import (
	"context"
	"fmt"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/twsctlcmd"
	"github.com/bufdev/twsctl/internal/pkg/cliio"
	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new universe list command that prints the instruments
// of one or all universes.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " [universe]",
		Short: "List the instruments of the universes",
		Args:  appcmd.MaximumNArgs(1),
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	universes := twsctluniverse.AllUniverses
	if container.NumArgs() == 1 {
		universe, err := twsctluniverse.ParseUniverse(container.Arg(0))
		if err != nil {
			return appcmd.NewInvalidArgumentError(err.Error())
		}
		universes = []twsctluniverse.Universe{universe}
	}
	config, err := twsctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	headers := []string{"UNIVERSE", "SYMBOL", "EXCHANGE", "CURRENCY", "SEC_TYPE", "HOURLY"}
	var rows [][]string
	for _, universe := range universes {
		for _, instrument := range twsctluniverse.Instruments(universe, config.Selection) {
			rows = append(rows, []string{
				string(universe),
				instrument.Symbol,
				instrument.Exchange,
				instrument.Currency,
				instrument.SecType,
				strconv.FormatBool(instrument.Hourly),
			})
		}
	}
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		return cliio.WriteTable(writer, headers, rows)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(rows)+1)
		records = append(records, headers)
		records = append(records, rows...)
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		type instrumentJSON struct {
			Universe string `json:"universe"`
			Symbol   string `json:"symbol"`
			Exchange string `json:"exchange"`
			Currency string `json:"currency"`
			SecType  string `json:"sec_type"`
			Hourly   bool   `json:"hourly"`
		}
		objects := make([]instrumentJSON, len(rows))
		for i, row := range rows {
			hourly, _ := strconv.ParseBool(row[5])
			objects[i] = instrumentJSON{
				Universe: row[0],
				Symbol:   row[1],
				Exchange: row[2],
				Currency: row[3],
				SecType:  row[4],
				Hourly:   hourly,
			}
		}
		return cliio.WriteJSON(writer, objects...)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
