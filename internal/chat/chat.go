// Package chat defines the transport-neutral chat session interface and the
// destination resolver used by the notification relay.
package chat

import (
	"context"
	"errors"

	"github.com/soyeahso/mjrelay/internal/correlate"
	"github.com/soyeahso/mjrelay/internal/domain"
)

// ErrDestinationNotFound is returned when a correlation key does not map to
// a live contact or group in the chat directory.
var ErrDestinationNotFound = errors.New("destination not found")

// Event is a lifecycle or message event emitted by a chat session.
type Event struct {
	// Exactly one of the following is set.
	Scan    *ScanEvent
	Login   *LoginEvent
	Message *domain.Message
}

// ScanEvent carries the login QR payload before authentication.
type ScanEvent struct {
	QRCode string
}

// LoginEvent reports a successful login with the bot account's display name.
type LoginEvent struct {
	Name string
}

// Session is a connected chat transport. Implementations: the websocket
// puppet bridge (chat/bridge) and IRC (chat/irc).
type Session interface {
	// Start connects the session and begins emitting events. It blocks
	// until the context is cancelled or the connection fails.
	Start(ctx context.Context) error

	// Stop gracefully disconnects.
	Stop(ctx context.Context) error

	// OnEvent registers the handler for session events. One event is
	// handled fully before the next is dispatched.
	OnEvent(handler func(evt Event))

	// SelfName returns the bot account's display name. Before login this
	// is the configured default.
	SelfName() string

	// FindContact looks up a direct contact by exact display name.
	FindContact(ctx context.Context, name string) (domain.Destination, bool, error)

	// FindGroup looks up a group chat by exact topic.
	FindGroup(ctx context.Context, topic string) (domain.Destination, bool, error)

	// SendText delivers a text message to a destination.
	SendText(ctx context.Context, dest domain.Destination, text string) error

	// SendImage delivers an image to a destination.
	SendImage(ctx context.Context, dest domain.Destination, img domain.Image) error
}

// ResolveDestination maps a correlation key to a chat destination with
// exactly one directory lookup: contact by name for direct keys, group by
// topic otherwise. The first match wins; duplicates are not disambiguated.
func ResolveDestination(ctx context.Context, s Session, key correlate.Key) (domain.Destination, error) {
	if key.Group == "" {
		dest, ok, err := s.FindContact(ctx, key.User)
		if err != nil {
			return domain.Destination{}, err
		}
		if !ok {
			return domain.Destination{}, ErrDestinationNotFound
		}
		dest.User = key.User
		return dest, nil
	}

	dest, ok, err := s.FindGroup(ctx, key.Group)
	if err != nil {
		return domain.Destination{}, err
	}
	if !ok {
		return domain.Destination{}, ErrDestinationNotFound
	}
	dest.User = key.User
	return dest, nil
}
