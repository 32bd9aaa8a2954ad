package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/paths"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv(paths.ConfigDirEnvVar, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Zero(t, cfg.DiscordPort)
	assert.Empty(t, cfg.LogLevel)
	assert.Nil(t, cfg.Telemetry)
}

func TestLoad_ParsesSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.ConfigDirEnvVar, dir)

	content := `{"enabled": false, "discord_port": 8484, "log_level": "debug"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 8484, cfg.DiscordPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MalformedSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.ConfigDirEnvVar, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("not json"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv(paths.ConfigDirEnvVar, filepath.Join(t.TempDir(), "kimaki"))

	optIn := true
	require.NoError(t, Save(&Settings{
		Enabled:     true,
		DiscordPort: 9099,
		LogLevel:    "warn",
		Telemetry:   &optIn,
	}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 9099, cfg.DiscordPort)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NotNil(t, cfg.Telemetry)
	assert.True(t, *cfg.Telemetry)
}

func TestCoordinationPort(t *testing.T) {
	tests := []struct {
		name     string
		filePort int
		envPort  string
		want     int
		wantOK   bool
	}{
		{name: "unconfigured", want: 0, wantOK: false},
		{name: "from file", filePort: 8484, want: 8484, wantOK: true},
		{name: "env overrides file", filePort: 8484, envPort: "9099", want: 9099, wantOK: true},
		{name: "env only", envPort: "9099", want: 9099, wantOK: true},
		{name: "invalid env falls back to file", filePort: 8484, envPort: "not-a-port", want: 8484, wantOK: true},
		{name: "env port out of range", envPort: "70000", want: 0, wantOK: false},
		{name: "file port out of range", filePort: 70000, want: 0, wantOK: false},
		{name: "negative env port", envPort: "-1", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(PortEnvVar, tt.envPort)

			cfg := &Settings{Enabled: true, DiscordPort: tt.filePort}
			port, ok := cfg.CoordinationPort()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, port)
		})
	}
}
