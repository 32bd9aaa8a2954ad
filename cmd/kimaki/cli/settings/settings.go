// Package settings provides configuration loading for Kimaki.
// This package is separate from cli so leaf packages can import it
// without creating an import cycle.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/paths"
)

// PortEnvVar overrides the coordination port used to reach the Discord bot
// process. When neither the env var nor the settings file provides a port,
// the upload bridge is disabled.
const PortEnvVar = "KIMAKI_DISCORD_PORT"

// Settings represents the ~/.config/kimaki/settings.json configuration.
type Settings struct {
	// Enabled indicates whether Kimaki is active. When false, hooks exit
	// silently without injecting context. Defaults to true.
	Enabled bool `json:"enabled"`

	// DiscordPort is the loopback port of the sibling bot process used for
	// the file-upload bridge. 0 means not configured.
	DiscordPort int `json:"discord_port,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by the KIMAKI_LOG_LEVEL environment variable.
	// Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not configured, true = opted in, false = opted out
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Load loads the settings from ~/.config/kimaki/settings.json.
// Returns default settings if the file doesn't exist.
func Load() (*Settings, error) {
	settingsFile, err := paths.SettingsFile()
	if err != nil {
		return nil, fmt.Errorf("resolving settings path: %w", err)
	}
	return loadFromFile(settingsFile)
}

// loadFromFile loads settings from a specific file path.
// Returns default settings if the file doesn't exist.
func loadFromFile(filePath string) (*Settings, error) {
	settings := &Settings{
		Enabled: true, // Default to enabled
	}

	data, err := os.ReadFile(filePath) //nolint:gosec // path is from paths package or caller
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}

	return settings, nil
}

// Save writes the settings to ~/.config/kimaki/settings.json.
func Save(settings *Settings) error {
	if _, err := paths.EnsureConfigDir(); err != nil {
		return err
	}
	settingsFile, err := paths.SettingsFile()
	if err != nil {
		return fmt.Errorf("resolving settings path: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	// Atomic write: write to temp file, then rename
	tmpFile := settingsFile + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmpFile, settingsFile); err != nil {
		return fmt.Errorf("renaming settings file: %w", err)
	}
	return nil
}

// CoordinationPort returns the port of the sibling Discord bot process.
// The KIMAKI_DISCORD_PORT environment variable takes priority over the
// settings file. Returns (0, false) when no port is configured, which
// disables the upload bridge.
func (s *Settings) CoordinationPort() (int, bool) {
	if raw := os.Getenv(PortEnvVar); raw != "" {
		port, err := strconv.Atoi(raw)
		if err == nil && port > 0 && port < 65536 {
			return port, true
		}
		fmt.Fprintf(os.Stderr, "[kimaki] Warning: invalid %s value %q, ignoring\n", PortEnvVar, raw)
	}
	if s.DiscordPort > 0 && s.DiscordPort < 65536 {
		return s.DiscordPort, true
	}
	return 0, false
}
