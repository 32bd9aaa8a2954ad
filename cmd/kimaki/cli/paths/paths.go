// Package paths resolves the locations where Kimaki keeps its
// cross-invocation state: settings, per-session entries, thread links,
// and logs. Everything lives under ~/.config/kimaki.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// configDirName is the directory under the user config root.
	configDirName = "kimaki"

	// SettingsFileName is the settings file inside the config dir.
	SettingsFileName = "settings.json"

	// sessionsDirName holds one JSON file per tracked session.
	sessionsDirName = "sessions"

	// threadsFileName maps session IDs to Discord thread IDs.
	threadsFileName = "threads.json"

	// logsDirName holds per-session log files.
	logsDirName = "logs"
)

// ConfigDirEnvVar overrides the config directory location (used in tests).
const ConfigDirEnvVar = "KIMAKI_CONFIG_DIR"

// ConfigDir returns the expanded path to the kimaki config directory
// (~/.config/kimaki by default).
func ConfigDir() (string, error) {
	if override := os.Getenv(ConfigDirEnvVar); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// SettingsFile returns the path to the settings file.
func SettingsFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// SessionsDir returns the directory holding per-session state files.
func SessionsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionsDirName), nil
}

// ThreadsFile returns the path to the session-to-thread mapping file.
func ThreadsFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, threadsFileName), nil
}

// LogsDir returns the directory holding per-session log files.
func LogsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logsDirName), nil
}
