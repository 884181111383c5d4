// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/account"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/config"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/download"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/probe"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/universe"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("twsctl"))
}

// newRootCommand creates the root twsctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Download Interactive Brokers market data and show account state",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			account.NewCommand("account", builder),
			config.NewCommand("config", builder),
			download.NewCommand("download", builder),
			probe.NewCommand("probe", builder),
			universe.NewCommand("universe", builder),
		},
	}
}
