package cli

import (
	"fmt"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/session"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/settings"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/threads"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Kimaki status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, err := settings.Load()
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			if cfg.Enabled {
				fmt.Fprintln(out, "Kimaki: enabled")
			} else {
				fmt.Fprintln(out, "Kimaki: disabled")
			}

			if port, ok := cfg.CoordinationPort(); ok {
				fmt.Fprintf(out, "Upload bridge: port %d\n", port)
			} else {
				fmt.Fprintln(out, "Upload bridge: not configured (set discord_port or KIMAKI_DISCORD_PORT)")
			}

			if branch, err := currentBranch(); err == nil {
				fmt.Fprintf(out, "Current branch: %s\n", branch)
			}

			if store, err := session.NewStore(); err == nil {
				if entries, err := store.List(cmd.Context()); err == nil {
					fmt.Fprintf(out, "Tracked sessions: %d\n", len(entries))
				}
			}

			if threadStore, err := threads.NewStore(); err == nil {
				if links, err := threadStore.List(cmd.Context()); err == nil {
					fmt.Fprintf(out, "Linked threads: %d\n", len(links))
				}
			}

			return nil
		},
	}
}
