// Package message implements the chat-message hook: it observes the message
// stream for a session and appends hidden "synthetic" context parts when the
// git state changes or a long idle gap precedes the message.
package message

import (
	"github.com/google/uuid"
)

// PartTypeText is the only part type this package ever appends.
const PartTypeText = "text"

// Part is one fragment of a chat message. The hook only ever appends
// text parts with Synthetic=true; it never removes or reorders existing
// entries.
type Part struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionID"`
	MessageID string `json:"messageID"`
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`

	// Synthetic marks parts generated by the system rather than the user or
	// model. The presentation layer hides them; downstream context builders
	// keep them.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Event is one inbound chat-message event as delivered to the hook.
// Parts is the in-progress ordered part list; the hook mutates it by
// appending only.
type Event struct {
	SessionID string `json:"sessionID"`
	Directory string `json:"directory"`
	Parts     []Part `json:"parts"`
}

// SessionDeletedEvent is the session-teardown notification.
type SessionDeletedEvent struct {
	Type       string `json:"type"`
	Properties struct {
		Info struct {
			ID string `json:"id"`
		} `json:"info"`
	} `json:"properties"`
}

// SessionDeletedEventType is the event type carried by teardown notifications.
const SessionDeletedEventType = "session.deleted"

// newSyntheticPart builds a hidden text part anchored to an existing real
// part of the same message.
func newSyntheticPart(anchor Part, text string) Part {
	return Part{
		ID:        "prt_" + uuid.NewString(),
		SessionID: anchor.SessionID,
		MessageID: anchor.MessageID,
		Type:      PartTypeText,
		Text:      text,
		Synthetic: true,
	}
}

// firstRealPart returns the first non-synthetic part, which anchors any
// injected parts to the message. Returns (Part{}, false) when the message has
// no real part yet.
func firstRealPart(parts []Part) (Part, bool) {
	for _, p := range parts {
		if !p.Synthetic {
			return p, true
		}
	}
	return Part{}, false
}
