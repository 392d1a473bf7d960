package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"conductor/pkg/logging"
)

const userConfigDir = ".config/conductor"

// GetDefaultConfigPathOrPanic returns the per-user configuration directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from configDir/config.yaml, overlaying any
// values found there onto the defaults. A missing file is not an error: the
// defaults are returned as-is. A file that exists but cannot be parsed is.
func LoadConfig(configDir string) (Config, error) {
	cfg := GetDefaultConfig()

	configFilePath := filepath.Join(configDir, "config.yaml")
	loaded, err := loadConfigFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return cfg, nil
		}
		return cfg, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	return mergeConfigs(cfg, loaded), nil
}

// CapabilitiesPath resolves the capabilities file location for a config
// loaded from configDir. Relative paths are anchored at configDir.
func (c Config) CapabilitiesPath(configDir string) string {
	path := c.Registry.CapabilitiesPath
	if path == "" {
		path = DefaultCapabilitiesFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfigs overlays loaded values onto base. Only fields the file
// actually set (non-zero) replace the defaults.
func mergeConfigs(base, loaded Config) Config {
	merged := base

	if loaded.Server.Transport != "" {
		merged.Server.Transport = loaded.Server.Transport
	}
	if loaded.Server.Host != "" {
		merged.Server.Host = loaded.Server.Host
	}
	if loaded.Server.Port != 0 {
		merged.Server.Port = loaded.Server.Port
	}

	if len(loaded.Gateway.Command) > 0 {
		merged.Gateway.Command = loaded.Gateway.Command
	}
	if loaded.Gateway.TimeoutSeconds != 0 {
		merged.Gateway.TimeoutSeconds = loaded.Gateway.TimeoutSeconds
	}
	if loaded.Gateway.ToolListTimeoutSeconds != 0 {
		merged.Gateway.ToolListTimeoutSeconds = loaded.Gateway.ToolListTimeoutSeconds
	}

	if loaded.Registry.CapabilitiesPath != "" {
		merged.Registry.CapabilitiesPath = loaded.Registry.CapabilitiesPath
	}
	if loaded.Registry.Watch {
		merged.Registry.Watch = true
	}

	if loaded.Matcher.TopK != 0 {
		merged.Matcher.TopK = loaded.Matcher.TopK
	}
	if loaded.Matcher.MinConfidence != 0 {
		merged.Matcher.MinConfidence = loaded.Matcher.MinConfidence
	}

	if loaded.Reaper.Disabled {
		merged.Reaper.Disabled = true
	}
	if loaded.Reaper.PollIntervalSeconds != 0 {
		merged.Reaper.PollIntervalSeconds = loaded.Reaper.PollIntervalSeconds
	}
	if loaded.Reaper.IdleThresholdSeconds != 0 {
		merged.Reaper.IdleThresholdSeconds = loaded.Reaper.IdleThresholdSeconds
	}

	if loaded.Telemetry.MaxEvents != 0 {
		merged.Telemetry.MaxEvents = loaded.Telemetry.MaxEvents
	}
	if loaded.Telemetry.File != "" {
		merged.Telemetry.File = loaded.Telemetry.File
	}

	return merged
}
