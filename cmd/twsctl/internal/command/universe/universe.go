// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package universe implements the "universe" command group.
package universe

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/cmd/twsctl/internal/command/universe/universelist"
)

// NewCommand returns a new universe command group with the list sub-command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect the instrument universes",
		SubCommands: []*appcmd.Command{
			universelist.NewCommand("list", builder),
		},
	}
}
