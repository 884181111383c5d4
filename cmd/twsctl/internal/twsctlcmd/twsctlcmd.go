// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlcmd provides shared wiring for twsctl commands that talk to
// the Client Portal Gateway (reading config, constructing and checking the client).
package twsctlcmd

import (
	"context"
	"fmt"

	"buf.build/go/app"
	"buf.build/go/app/appext"
	"github.com/bufdev/twsctl/internal/pkg/ibgateway"
	"github.com/bufdev/twsctl/internal/twsctl/twsctlconfig"
)

const (
	// HostFlagName is the shared flag name for the gateway host.
	HostFlagName = "host"
	// PortFlagName is the shared flag name for the gateway port.
	PortFlagName = "port"

	// connectExitCode is the process exit code when the gateway is unreachable.
	connectExitCode = 1
)

// ReadConfig reads the configuration file from the appext container's config
// directory. A missing file yields defaults.
func ReadConfig(container appext.Container) (*twsctlconfig.Config, error) {
	return twsctlconfig.ReadConfig(container.ConfigDirPath())
}

// NewGatewayClient constructs a gateway client and verifies the gateway is
// reachable and its session is usable.
//
// Connectivity failures are returned as exit-code errors so scripts can
// distinguish "gateway down" from other failures.
func NewGatewayClient(ctx context.Context, container appext.Container, host string, port int) (ibgateway.Client, error) {
	logger := container.Logger()
	client := ibgateway.NewClient(logger, host, port)
	status, err := client.AuthStatus(ctx)
	if err != nil {
		return nil, app.NewError(
			connectExitCode,
			fmt.Sprintf("could not connect to Client Portal Gateway at %s:%d, is it running? (%v)", host, port, err),
		)
	}
	if !status.Authenticated {
		return nil, app.NewError(
			connectExitCode,
			fmt.Sprintf("Client Portal Gateway at %s:%d is running but its session is not authenticated, log in via the gateway web page", host, port),
		)
	}
	if status.Competing {
		logger.Warn("another session is competing for the gateway connection")
	}
	return client, nil
}
