package wordledomain

import (
	"errors"
	"time"
)

var (
	// ErrMissingTimestamp is returned for a message that carries no usable
	// creation time. Storing it would beat every real report for the day.
	ErrMissingTimestamp = errors.New("message has no timestamp")
	// ErrMalformedMessage is yielded by a history source for an item it could
	// not decode. The walk continues past it.
	ErrMalformedMessage = errors.New("malformed history message")
)

// Message is a chat message that may carry a score report.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	AuthorBot bool
	Content   string
	Timestamp time.Time
}

// HasTimestamp reports whether the message was stamped after the unix epoch.
func (m Message) HasTimestamp() bool {
	return !m.Timestamp.IsZero() && m.Timestamp.Unix() > 0
}
