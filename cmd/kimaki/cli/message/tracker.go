package message

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/gitstate"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/logging"
	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/session"
)

// IdleThreshold is the minimum gap between messages that triggers an
// idle-gap context part.
const IdleThreshold = 10 * time.Minute

// resolveFunc matches gitstate.Resolve and is swappable in tests.
type resolveFunc func(ctx context.Context, directory string) (*gitstate.State, bool)

// Tracker decides, per inbound message, whether to inject hidden context
// parts, and remembers per-session state in a Registry.
//
// The embedding host must not run two Inject calls for the same session ID
// concurrently (see session.Registry).
type Tracker struct {
	registry session.Registry
	resolve  resolveFunc
}

// NewTracker creates a tracker backed by the given registry.
func NewTracker(registry session.Registry) *Tracker {
	return &Tracker{
		registry: registry,
		resolve:  gitstate.Resolve,
	}
}

// Inject evaluates the event against the session's remembered state and
// appends zero, one, or two synthetic text parts to event.Parts: a
// git-change part first, then an idle-gap part. It updates the registry
// entry as a side effect.
//
// Registry failures degrade to "no context injected"; Inject returns an
// error only so callers can log it, never to abort the message.
func (t *Tracker) Inject(ctx context.Context, event *Event, now time.Time) error {
	// Synthetic parts anchor to an existing real part. Without one there is
	// nothing to attach to, so the whole evaluation is skipped.
	anchor, ok := firstRealPart(event.Parts)
	if !ok {
		return nil
	}

	entry, err := t.registry.Get(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("loading session entry: %w", err)
	}
	if entry == nil {
		entry = &session.Entry{SessionID: event.SessionID}
	}

	if part := t.gitChangePart(ctx, event.Directory, entry, anchor); part != nil {
		event.Parts = append(event.Parts, *part)
		logging.Debug(ctx, "injected git context part",
			slog.String("key", entry.LastGit.Key),
		)
	}

	if part := idleGapPart(entry, anchor, now); part != nil {
		event.Parts = append(event.Parts, *part)
	}
	entry.LastMessageAt = &now

	if err := t.registry.Put(ctx, entry); err != nil {
		return fmt.Errorf("saving session entry: %w", err)
	}
	return nil
}

// HandleSessionDeleted removes the session's tracker entry. Unknown session
// IDs are a no-op; this is the sole destructor path for registry entries.
func (t *Tracker) HandleSessionDeleted(ctx context.Context, event SessionDeletedEvent) error {
	if event.Type != SessionDeletedEventType {
		return nil
	}
	id := event.Properties.Info.ID
	if id == "" {
		return nil
	}
	if err := t.registry.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session entry: %w", err)
	}
	logging.Debug(ctx, "session entry deleted", slog.String("deleted_session_id", id))
	return nil
}

// gitChangePart resolves the current git state and, when it differs from the
// session's remembered state, records the new state on entry and returns the
// announcement part. Returns nil when there is nothing to report.
func (t *Tracker) gitChangePart(ctx context.Context, directory string, entry *session.Entry, anchor Part) *Part {
	current, ok := t.resolve(ctx, directory)
	if !ok {
		// Not a git repository (or no commits yet): nothing to report and
		// nothing to remember.
		return nil
	}

	previous := entry.LastGit
	if previous != nil && previous.Key == current.Key {
		return nil
	}

	var text string
	switch {
	case current.Warning != "":
		text = current.Warning
	case previous != nil && previous.Kind == gitstate.KindBranch:
		text = fmt.Sprintf("Branch changed: %s -> %s", previous.Label, current.Label)
	default:
		text = "Current branch: " + current.Label
	}

	entry.LastGit = current
	part := newSyntheticPart(anchor, text)
	return &part
}

// idleGapPart returns an idle-gap part when at least IdleThreshold has
// passed since the session's previous message. A session with no recorded
// previous message never produces an idle part.
func idleGapPart(entry *session.Entry, anchor Part, now time.Time) *Part {
	if entry.LastMessageAt == nil {
		return nil
	}
	elapsed := now.Sub(*entry.LastMessageAt)
	if elapsed < IdleThreshold {
		return nil
	}

	text := fmt.Sprintf("The previous message in this session was %s ago. Current time: %s UTC / %s %s",
		formatElapsed(elapsed),
		now.UTC().Format("2006-01-02 15:04"),
		now.In(time.Local).Format("01/02/2006 15:04"),
		localZoneName(now),
	)
	part := newSyntheticPart(anchor, text)
	return &part
}

// formatElapsed renders a duration as "<H>h <M>m", or "<M>m" under an hour.
func formatElapsed(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// localZoneName returns the IANA name of the process's local timezone when
// known, falling back to $TZ and then the zone abbreviation.
func localZoneName(now time.Time) string {
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	abbrev, _ := now.In(time.Local).Zone()
	return abbrev
}
