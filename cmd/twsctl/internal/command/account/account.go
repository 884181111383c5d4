// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package account implements the "account" command.
package account

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/twsctlcmd"
	"github.com/bufdev/twsctl/internal/pkg/cliio"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlaccount"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlconfig"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new account command that displays the account
// overview, open positions, and live orders.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display account overview, positions, and live orders",
		Args:  appcmd.NoArgs,
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
	// Format is the output format (table, csv, json).
	Format string

	flagSet *pflag.FlagSet
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Host, twsctlcmd.HostFlagName, twsctlconfig.DefaultHost, "The Client Portal Gateway host")
	flagSet.IntVar(&f.Port, twsctlcmd.PortFlagName, twsctlconfig.DefaultPort, "The Client Portal Gateway port")
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
	f.flagSet = flagSet
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := twsctlcmd.ReadConfig(container)
	if err != nil {
		return err
	}
	host := config.Host
	if flags.flagSet.Changed(twsctlcmd.HostFlagName) {
		host = flags.Host
	}
	port := config.Port
	if flags.flagSet.Changed(twsctlcmd.PortFlagName) {
		port = flags.Port
	}
	client, err := twsctlcmd.NewGatewayClient(ctx, container, host, port)
	if err != nil {
		return err
	}
	accounts, err := client.Accounts(ctx)
	if err != nil {
		return err
	}
	writer := container.Stdout()
	for i, account := range accounts {
		accountID := account.Identifier()
		summary, err := client.AccountSummary(ctx, accountID)
		if err != nil {
			return err
		}
		overview := twsctlaccount.NewOverview(accountID, summary)
		positions, err := client.Positions(ctx, accountID)
		if err != nil {
			return err
		}
		switch format {
		case cliio.FormatTable:
			if i > 0 {
				if _, err := fmt.Fprintln(writer); err != nil {
					return err
				}
			}
			if err := cliio.WriteTable(writer, twsctlaccount.OverviewHeaders(), [][]string{overview.OverviewRow()}); err != nil {
				return err
			}
			if len(positions) > 0 {
				if _, err := fmt.Fprintln(writer); err != nil {
					return err
				}
				rows := make([][]string, len(positions))
				for j, position := range positions {
					rows[j] = twsctlaccount.PositionRow(position)
				}
				if err := cliio.WriteTableWithTotals(
					writer,
					twsctlaccount.PositionHeaders(),
					rows,
					twsctlaccount.PositionTotals(positions),
				); err != nil {
					return err
				}
			}
		case cliio.FormatCSV:
			records := make([][]string, 0, len(positions)+1)
			records = append(records, twsctlaccount.PositionHeaders())
			for _, position := range positions {
				records = append(records, twsctlaccount.PositionRow(position))
			}
			if err := cliio.WriteCSVRecords(writer, records); err != nil {
				return err
			}
		case cliio.FormatJSON:
			if err := cliio.WriteJSON(writer, overview); err != nil {
				return err
			}
			if err := cliio.WriteJSON(writer, positions...); err != nil {
				return err
			}
		default:
			return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
		}
	}
	// Live orders are session-wide, not per-account.
	orders, err := client.LiveOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}
	switch format {
	case cliio.FormatTable:
		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}
		rows := make([][]string, len(orders))
		for i, order := range orders {
			rows[i] = twsctlaccount.OrderRow(order)
		}
		return cliio.WriteTable(writer, twsctlaccount.OrderHeaders(), rows)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(orders)+1)
		records = append(records, twsctlaccount.OrderHeaders())
		for _, order := range orders {
			records = append(records, twsctlaccount.OrderRow(order))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, orders...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
