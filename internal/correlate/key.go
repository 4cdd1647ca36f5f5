// Package correlate implements the state key that round-trips a chat
// destination through the remote task API. The key is the only link between
// a submitted task and the later webhook notification: no job table exists.
package correlate

import (
	"errors"
	"strings"
)

// delimiter separates the group segment from the user segment.
const delimiter = ":"

// ErrDelimiterInName is returned when a group or user name contains the
// key delimiter and therefore cannot be encoded unambiguously.
var ErrDelimiterInName = errors.New("name contains the key delimiter")

// Key identifies the chat destination a task belongs to. An empty Group
// denotes a direct-message destination.
type Key struct {
	Group string
	User  string
}

// Encode renders the key as "group:user", or just "user" for direct
// messages. Names containing the delimiter are rejected rather than
// producing a key that would mis-parse on the way back.
func (k Key) Encode() (string, error) {
	if strings.Contains(k.Group, delimiter) || strings.Contains(k.User, delimiter) {
		return "", ErrDelimiterInName
	}
	if k.Group == "" {
		return k.User, nil
	}
	return k.Group + delimiter + k.User, nil
}

// Parse splits a state string on the first delimiter. A string with no
// delimiter is a direct-message key.
func Parse(state string) Key {
	i := strings.Index(state, delimiter)
	if i < 0 {
		return Key{User: state}
	}
	return Key{Group: state[:i], User: state[i+1:]}
}
