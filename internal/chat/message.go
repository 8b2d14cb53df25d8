// Package chat defines the conversation types exchanged between the widget,
// the local session store and the answering backend.
//
// A conversation is an append-only, insertion-ordered list of messages. Each
// message is exactly one of three kinds: a user turn, an assistant turn, or a
// synthetic error turn rendered in-transcript when a query fails.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType discriminates the three kinds of conversation turns.
type MessageType string

// Message types. Mutually exclusive, never mixed.
const (
	TypeUser      MessageType = "user"
	TypeAssistant MessageType = "assistant"
	TypeError     MessageType = "error"
)

// Message is one turn in the conversation.
//
// ID is server-issued for assistant turns and client-issued for user and
// error turns. Sources and Confidence are set on assistant turns only.
// Timestamp is serialized as an RFC 3339 string in storage.
type Message struct {
	ID         string      `json:"id"`
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	Sources    []Citation  `json:"sources,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Citation is a reference to a source excerpt backing an assistant answer.
// Citations are read-only: they are produced by the answering backend and
// never modified client-side.
type Citation struct {
	ID              string  `json:"id"`
	Chapter         string  `json:"chapter"`
	Section         string  `json:"section,omitempty"`
	ContentExcerpt  string  `json:"content_excerpt"`
	Link            string  `json:"link,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// NewUserMessage builds a user turn with a client-issued id.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      TypeUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage builds a synthetic error turn with a client-issued id.
func NewErrorMessage(description string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      TypeError,
		Content:   description,
		Timestamp: time.Now(),
	}
}

// ChapterFromPath extracts the chapter segment from a site page path such as
// "/docs/chapter-3/section-2". The chapter is the path segment following a
// leading "docs" segment when present, otherwise the first non-empty segment.
// Returns "" for the root path.
func ChapterFromPath(path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	if segments[0] == "docs" && len(segments) > 1 {
		return segments[1]
	}
	return segments[0]
}
