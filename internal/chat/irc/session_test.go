package irc

import (
	"context"
	"testing"

	"github.com/soyeahso/mjrelay/internal/config"
	"github.com/soyeahso/mjrelay/internal/logging"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestSelfNameDefaultsToNick(t *testing.T) {
	s := New(config.IRCConfig{Server: "irc.test", Nick: "mjrelay"}, testLogger())
	assert.Equal(t, "mjrelay", s.SelfName())
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"single line", "hello", 400, []string{"hello"}},
		{"newlines split", "a\nb\nc", 400, []string{"a", "b", "c"}},
		{"empty lines dropped", "a\n\nb", 400, []string{"a", "b"}},
		{"long line chunked", "aaaaabbbbbcc", 5, []string{"aaaaa", "bbbbb", "cc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitMessage(tt.text, tt.limit))
		})
	}
}

func TestLookupsRequireConnection(t *testing.T) {
	s := New(config.IRCConfig{Server: "irc.test", Nick: "mjrelay"}, testLogger())

	_, _, err := s.FindContact(context.Background(), "alice")
	assert.Error(t, err)
	_, _, err = s.FindGroup(context.Background(), "#painters")
	assert.Error(t, err)
}
