// hooks_cmd.go contains the hook handlers invoked by the embedding agent
// host. Each handler reads one JSON event from stdin; the message handler
// writes the updated event back to stdout.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/logging"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/message"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/session"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/settings"
	"github.com/spf13/cobra"
)

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "hooks",
		Short:  "Hook handlers",
		Long:   "Commands called by agent hooks. These are internal and not for direct user use.",
		Hidden: true, // Internal command, not for direct user use
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "message",
		Short: "Handle a chat-message event from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleMessageHook(cmd.Context(), os.Stdin, os.Stdout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "session-deleted",
		Short: "Handle a session-deleted event from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleSessionDeletedHook(cmd.Context(), os.Stdin)
		},
	})

	return cmd
}

// handleMessageHook decodes one chat-message event, runs context injection,
// and writes the (possibly extended) event back out. The output part list is
// always a superset of the input list, in the same order.
//
// A failing injection must never break the user's message, so tracker errors
// are logged and the event is echoed back as-is.
func handleMessageHook(ctx context.Context, in io.Reader, out io.Writer) error {
	var event message.Event
	if err := json.NewDecoder(in).Decode(&event); err != nil {
		return fmt.Errorf("failed to parse message event: %w", err)
	}
	if event.SessionID == "" {
		return fmt.Errorf("no sessionID in message event")
	}

	cfg, err := settings.Load()
	if err != nil {
		cfg = &settings.Settings{Enabled: true}
	}

	if cfg.Enabled {
		logging.SetLogLevelGetter(func() string { return cfg.LogLevel })
		if err := logging.Init(event.SessionID); err == nil {
			defer logging.Close()
		}
		ctx = logging.WithComponent(logging.WithSession(ctx, event.SessionID), "hooks")
		logging.Info(ctx, "message hook",
			slog.String("hook", "message"),
			slog.String("directory", event.Directory),
			slog.Int("part_count", len(event.Parts)),
		)
		defer logging.LogDuration(ctx, slog.LevelInfo, "message hook completed", time.Now())

		tracker, err := newFileTracker()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open session registry: %v\n", err)
		} else if err := tracker.Inject(ctx, &event, time.Now()); err != nil {
			logging.Warn(ctx, "context injection failed", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Warning: context injection failed: %v\n", err)
		}
	}

	if err := json.NewEncoder(out).Encode(&event); err != nil {
		return fmt.Errorf("failed to encode message event: %w", err)
	}
	return nil
}

// handleSessionDeletedHook decodes one session-deleted notification and
// purges the session's tracker entry. Deleting an unknown session is a
// no-op.
func handleSessionDeletedHook(ctx context.Context, in io.Reader) error {
	var event message.SessionDeletedEvent
	if err := json.NewDecoder(in).Decode(&event); err != nil {
		return fmt.Errorf("failed to parse session-deleted event: %w", err)
	}

	tracker, err := newFileTracker()
	if err != nil {
		return fmt.Errorf("failed to open session registry: %w", err)
	}

	ctx = logging.WithComponent(ctx, "hooks")
	if err := tracker.HandleSessionDeleted(ctx, event); err != nil {
		return fmt.Errorf("failed to handle session deletion: %w", err)
	}
	return nil
}

// newFileTracker builds a tracker backed by the file registry, which shares
// state across one-process-per-event hook invocations.
func newFileTracker() (*message.Tracker, error) {
	store, err := session.NewStore()
	if err != nil {
		return nil, err
	}
	return message.NewTracker(store), nil
}
