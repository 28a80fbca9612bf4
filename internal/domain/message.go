package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Kind distinguishes plain text messages from media (GIF) messages.
type Kind string

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

const (
	MaxAuthorLen   = 32
	MaxTextLen     = 500
	MaxMediaRefLen = 2000
)

// Message is the persisted chat message. Created by the ingest pipeline,
// immutable afterwards; the real-time layer only holds a copy for fan-out.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	MediaRef  string    `json:"mediaRef"`
	Room      RoomName  `json:"room"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResolveKind honors an explicit kind and otherwise infers it: a non-empty
// media reference makes the message media, anything else is text.
func ResolveKind(raw string, mediaRef string) Kind {
	switch Kind(raw) {
	case KindText, KindMedia:
		return Kind(raw)
	}
	if strings.TrimSpace(mediaRef) != "" {
		return KindMedia
	}
	return KindText
}

// Truncate caps s at max bytes, backing up to a rune boundary so the
// result stays valid UTF-8.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// HasBody reports whether the message carries content under at least one
// of its text or media interpretations.
func (m Message) HasBody() bool {
	return strings.TrimSpace(m.Text) != "" || strings.TrimSpace(m.MediaRef) != ""
}
