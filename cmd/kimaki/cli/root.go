package cli

import (
	"fmt"
	"runtime"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/settings"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/telemetry"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/versioncheck"
	"github.com/spf13/cobra"
)

const gettingStarted = `

Getting Started:
  Kimaki injects git and idle-time context into coding-agent sessions and
  brokers file uploads through a companion Discord bot. Point your agent's
  hooks at 'kimaki hooks message' and 'kimaki hooks session-deleted', and
  set KIMAKI_DISCORD_PORT (or discord_port in settings) to enable uploads.

`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

// NewRootCmd builds the kimaki root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kimaki",
		Short: "Kimaki CLI",
		Long:  "Session context injection and Discord upload brokering for coding agents" + gettingStarted,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		// Hide completion command from help but keep it functional
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			// Load telemetry preference from settings (nil defaults to disabled)
			cfg, err := settings.Load()
			if err != nil {
				cfg = &settings.Settings{Enabled: true}
			}

			telemetryClient := telemetry.NewClient(Version, cfg.Telemetry)
			defer telemetryClient.Close()
			_, hasPort := cfg.CoordinationPort()
			telemetryClient.TrackCommand(cmd, cfg.Enabled, hasPort)

			versioncheck.CheckAndNotify(cmd, Version)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newHooksCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newThreadsCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("Kimaki %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
