package cli

import (
	"fmt"
	"os"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/logging"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/settings"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/threads"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/upload"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "upload",
		Short:  "File-upload bridge to the Discord bot",
		Hidden: true, // Invoked by the agent as a tool, not by users
	}
	cmd.AddCommand(newUploadRequestCmd())
	return cmd
}

func newUploadRequestCmd() *cobra.Command {
	var (
		sessionID string
		directory string
		prompt    string
		maxFiles  int
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Ask the user to upload files via Discord",
		Long: "Sends one upload request to the companion bot process and waits up to " +
			"six minutes for the user to respond in Discord. The outcome is printed " +
			"as plain text for the agent; this command never fails the tool call.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if directory == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				directory = cwd
			}

			cfg, err := settings.Load()
			if err != nil {
				cfg = &settings.Settings{Enabled: true}
			}

			threadStore, err := threads.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open thread store: %w", err)
			}

			logging.SetLogLevelGetter(func() string { return cfg.LogLevel })
			if err := logging.Init(sessionID); err == nil {
				defer logging.Close()
			}
			ctx := logging.WithSession(cmd.Context(), sessionID)

			coordinator := upload.NewCoordinator(cfg, threadStore)
			outcome := coordinator.RequestUpload(ctx, sessionID, directory, prompt, maxFiles)

			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier")
	cmd.Flags().StringVar(&directory, "directory", "", "working directory the upload relates to (default: cwd)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "what to ask the user for")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "maximum number of files to accept (1-10, default 5)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
