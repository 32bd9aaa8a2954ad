package cli

import (
	"fmt"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/threads"
	"github.com/spf13/cobra"
)

func newThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Manage session-to-thread links",
		Long:  "Links between coding-agent sessions and the Discord threads that host them. The upload bridge needs a link to know where to prompt the user.",
	}
	cmd.AddCommand(newThreadsLinkCmd())
	cmd.AddCommand(newThreadsUnlinkCmd())
	cmd.AddCommand(newThreadsListCmd())
	return cmd
}

func newThreadsLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <session-id> <thread-id>",
		Short: "Link a session to a Discord thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := threads.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open thread store: %w", err)
			}
			if err := store.Link(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to link thread: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked session %s to thread %s\n", args[0], args[1])
			return nil
		},
	}
}

func newThreadsUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <session-id>",
		Short: "Remove a session's thread link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := threads.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open thread store: %w", err)
			}
			if err := store.Unlink(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to unlink thread: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked session %s\n", args[0])
			return nil
		},
	}
}

func newThreadsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session-to-thread links",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := threads.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open thread store: %w", err)
			}
			links, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list threads: %w", err)
			}
			if len(links) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions are linked to threads.")
				return nil
			}
			for _, link := range links {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", link.SessionID, link.ThreadID)
			}
			return nil
		},
	}
}
