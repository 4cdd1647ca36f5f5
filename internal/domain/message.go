// Package domain defines the value types passed between the chat session,
// the command router, and the notification relay.
package domain

import (
	"context"
	"time"
)

// MessageKind classifies an inbound chat message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindOther MessageKind = "other"
)

// Message is a single received chat event. It lives for one handling pass
// and is never retained.
type Message struct {
	Sender    string      // display name of the sender
	Group     string      // group topic; empty for direct messages
	Kind      MessageKind
	Text      string
	Timestamp time.Time
	Self      bool // authored by the bot's own account

	// Image lazily fetches the image payload for image messages. Nil for
	// non-image messages.
	Image ImageFetcher
}

// ImageFetcher retrieves the raw bytes of an image message on demand.
type ImageFetcher func(ctx context.Context) ([]byte, error)

// InGroup reports whether the message originated in a group chat.
func (m Message) InGroup() bool { return m.Group != "" }

// Image is an outbound image payload: either a URL for the transport to
// fetch itself, or raw bytes already downloaded through the relay proxy.
type Image struct {
	URL      string
	Filename string
	Data     []byte
}
