// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package probe implements the "probe" command for testing gateway connectivity.
package probe

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/twsctlcmd"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlconfig"
	"github.com/spf13/pflag"
)

// NewCommand returns a new probe command for testing gateway connectivity.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Probe the Client Portal Gateway connection",
		Long: `Probe the Client Portal Gateway connection.

Checks that the gateway is reachable and its session is authenticated, and
prints the managed accounts. Does not download or write any data.`,
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

	flagSet *pflag.FlagSet
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Host, twsctlcmd.HostFlagName, twsctlconfig.DefaultHost, "The Client Portal Gateway host")
	flagSet.IntVar(&f.Port, twsctlcmd.PortFlagName, twsctlconfig.DefaultPort, "The Client Portal Gateway port")
	f.flagSet = flagSet
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
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
	if _, err := fmt.Fprintf(container.Stdout(), "gateway: %s:%d\naccounts: %d\n", host, port, len(accounts)); err != nil {
		return err
	}
	for _, account := range accounts {
		if _, err := fmt.Fprintf(container.Stdout(), "  %s\n", account.Identifier()); err != nil {
			return err
		}
	}
	return nil
}
