// Package session provides the local conversation session and its
// persistence.
//
// A session is a time-bounded conversation scope identified client-side.
// Exactly one session is live per installation at a time. The transcript of
// the live session is persisted alongside it and is always complete, never
// partial.
//
// All persistence is fail-soft: storage is best-effort local state, so every
// read, write or parse error is converted into absence rather than
// propagated. A [Store] backed by [Discard] turns every operation into a
// no-op returning absence.
package session

import (
	"time"

	"github.com/google/uuid"
)

// TTL is the fixed validity window of a session.
const TTL = 30 * 24 * time.Hour

// Storage keys. All values are stored under these fixed names.
const (
	keySession      = "session.json"
	keyConversation = "conversation.json"
	keyBrowserID    = "browser_id"
)

// Session identifies one logical conversation.
type Session struct {
	// ID is generated client-side for each new session.
	ID uuid.UUID `json:"id"`

	// BrowserID is the stable per-installation identifier, created once and
	// reused across sessions.
	BrowserID uuid.UUID `json:"anonymous_browser_id"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// PageContext captures the page the session was opened from.
	PageContext string `json:"page_context,omitempty"`
}

// Valid reports whether the session has not yet expired at t.
func (s *Session) Valid(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}
