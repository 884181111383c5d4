// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctlconfig provides configuration parsing and validation for twsctl.
//
// Configuration is stored at ~/.config/twsctl/config.yaml (or $TWSCTL_CONFIG_DIR/config.yaml).
// The configuration file is optional; every value has a default and can also
// be set per-invocation with command flags, which take precedence.
package twsctlconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bufdev/twsctl/internal/twsctl/twsctluniverse"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the configuration file within the config directory.
const ConfigFileName = "config.yaml"

const (
	// DefaultHost is the default Client Portal Gateway host.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default Client Portal Gateway port.
	DefaultPort = 5000
	// DefaultDataDirPath is the default directory for downloaded data,
	// relative to the working directory.
	DefaultDataDirPath = "data"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# Client Portal Gateway connection configuration.
#
# Optional. The gateway must be running and authenticated locally.
# gateway:
#   host: 127.0.0.1
#   port: 5000
# Download storage configuration.
#
# Optional. Setting data_dir to the empty string disables the CSV backend.
# data:
#   data_dir: data
#   csv: true
#   sqlite: true
# Universe adjustments applied to the built-in instrument lists.
#
# Optional.
# universe:
#   # Use a different exchange for specific symbols.
#   exchange_overrides:
#     TSLA: NYSE
#   # Skip specific symbols entirely.
#   exclude:
#     - VICI
#   # Additional symbols for the custom universe.
#   custom:
#     - ENB
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Gateway holds the Client Portal Gateway connection configuration.
	Gateway ExternalGatewayConfig `yaml:"gateway"`
	// Data holds the download storage configuration.
	Data ExternalDataConfig `yaml:"data"`
	// Universe holds adjustments to the built-in instrument lists.
	Universe ExternalUniverseConfig `yaml:"universe"`
}

// ExternalGatewayConfig holds the gateway connection configuration.
type ExternalGatewayConfig struct {
	// Host is the gateway host.
	Host string `yaml:"host"`
	// Port is the gateway port.
	Port int `yaml:"port"`
}

// ExternalDataConfig holds the download storage configuration.
type ExternalDataConfig struct {
	// DataDir is the data directory. A pointer so that an explicit empty
	// string (which disables the CSV backend) is distinguishable from unset.
	DataDir *string `yaml:"data_dir"`
	// CSV enables the gzip CSV file backend.
	CSV *bool `yaml:"csv"`
	// SQLite enables the SQLite backend.
	SQLite *bool `yaml:"sqlite"`
}

// ExternalUniverseConfig holds adjustments to the built-in instrument lists.
type ExternalUniverseConfig struct {
	// ExchangeOverrides maps symbols to an exchange different from the default.
	ExchangeOverrides map[string]string `yaml:"exchange_overrides"`
	// Exclude holds symbols to skip.
	Exclude []string `yaml:"exclude"`
	// Custom holds additional symbols for the custom universe.
	Custom []string `yaml:"custom"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// Host is the Client Portal Gateway host.
	Host string
	// Port is the Client Portal Gateway port.
	Port int
	// DataDirPath is the data directory. Empty disables the CSV backend.
	DataDirPath string
	// CSV enables the gzip CSV file backend.
	CSV bool
	// SQLite enables the SQLite backend.
	SQLite bool
	// Selection holds the universe adjustments.
	Selection twsctluniverse.Selection
	// CustomSymbols holds additional symbols for the custom universe.
	CustomSymbols []string
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	config := defaultConfig()
	if externalConfig.Gateway.Host != "" {
		config.Host = externalConfig.Gateway.Host
	}
	if externalConfig.Gateway.Port != 0 {
		if externalConfig.Gateway.Port < 0 || externalConfig.Gateway.Port > 65535 {
			return nil, fmt.Errorf("invalid gateway port %d", externalConfig.Gateway.Port)
		}
		config.Port = externalConfig.Gateway.Port
	}
	if externalConfig.Data.DataDir != nil {
		config.DataDirPath = *externalConfig.Data.DataDir
	}
	if externalConfig.Data.CSV != nil {
		config.CSV = *externalConfig.Data.CSV
	}
	if externalConfig.Data.SQLite != nil {
		config.SQLite = *externalConfig.Data.SQLite
	}
	if len(externalConfig.Universe.ExchangeOverrides) > 0 {
		config.Selection.ExchangeOverrides = make(map[string]string, len(externalConfig.Universe.ExchangeOverrides))
		for symbol, exchange := range externalConfig.Universe.ExchangeOverrides {
			config.Selection.ExchangeOverrides[twsctluniverse.NormalizeSymbol(symbol)] = exchange
		}
	}
	if len(externalConfig.Universe.Exclude) > 0 {
		config.Selection.Exclude = make(map[string]bool, len(externalConfig.Universe.Exclude))
		for _, symbol := range externalConfig.Universe.Exclude {
			config.Selection.Exclude[twsctluniverse.NormalizeSymbol(symbol)] = true
		}
	}
	config.CustomSymbols = externalConfig.Universe.Custom
	return config, nil
}

// ConfigFilePath returns the path to the configuration file within the given config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// ReadConfig reads and validates the configuration file from the given config directory.
// A missing configuration file is not an error; defaults are returned.
func ReadConfig(configDirPath string) (*Config, error) {
	filePath := ConfigFilePath(configDirPath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return NewConfig(externalConfig)
}

// InitConfig creates a new configuration file with a documented template.
// Creates the config directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(configDirPath string) (string, error) {
	filePath := ConfigFilePath(configDirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	// Create the config directory if it does not exist.
	if err := os.MkdirAll(configDirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfig reads and validates the configuration file from the given config directory.
func ValidateConfig(configDirPath string) error {
	_, err := ReadConfig(configDirPath)
	return err
}

// *** PRIVATE ***

func defaultConfig() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		DataDirPath: DefaultDataDirPath,
		CSV:         true,
		SQLite:      true,
	}
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
