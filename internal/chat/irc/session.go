// Package irc implements the chat session over IRC using the girc library.
// Contacts are nicks and groups are channels; image delivery degrades to
// sending the image URL as text, since IRC carries no media.
package irc

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/girc"
	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/config"
	"github.com/soyeahso/mjrelay/internal/domain"
	"github.com/soyeahso/mjrelay/internal/logging"
)

// ircLineLimit keeps outbound lines under the ~512 byte protocol limit.
const ircLineLimit = 400

// Session implements chat.Session for IRC.
type Session struct {
	cfg    config.IRCConfig
	client *girc.Client
	log    *logging.Logger

	mu       sync.RWMutex
	handler  func(evt chat.Event)
	selfName string
}

// New creates an IRC session.
func New(cfg config.IRCConfig, log *logging.Logger) *Session {
	return &Session{
		cfg:      cfg,
		log:      log.Sub("irc"),
		selfName: cfg.Nick,
	}
}

// OnEvent registers the session event handler.
func (s *Session) OnEvent(handler func(evt chat.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// SelfName returns the bot's nick.
func (s *Session) SelfName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfName
}

// Start connects to the IRC server and begins processing messages. It
// blocks until the context is cancelled or the connection fails.
func (s *Session) Start(ctx context.Context) error {
	port := s.cfg.Port
	if port == 0 {
		if s.cfg.UseTLS {
			port = 6697
		} else {
			port = 6667
		}
	}

	gircCfg := girc.Config{
		Server:  s.cfg.Server,
		Port:    port,
		Nick:    s.cfg.Nick,
		User:    s.cfg.Nick,
		Name:    "mjrelay",
		SSL:     s.cfg.UseTLS,
		Version: "mjrelay/1.0",
	}

	if s.cfg.UseTLS {
		gircCfg.TLSConfig = &tls.Config{ServerName: s.cfg.Server}
	}

	if s.cfg.SASL && s.cfg.Password != "" {
		gircCfg.SASL = &girc.SASLPlain{User: s.cfg.Nick, Pass: s.cfg.Password}
	} else if s.cfg.Password != "" {
		gircCfg.ServerPass = s.cfg.Password
	}

	s.client = girc.New(gircCfg)
	s.registerHandlers()

	s.log.Info().
		Str("server", s.cfg.Server).
		Int("port", port).
		Str("nick", s.cfg.Nick).
		Strs("channels", s.cfg.Channels).
		Bool("tls", s.cfg.UseTLS).
		Msg("connecting to IRC")

	// Connect blocks, so run it off the select below.
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.Connect()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("irc connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.client.Close()
		return ctx.Err()
	}
}

// Stop gracefully disconnects from the IRC server.
func (s *Session) Stop(ctx context.Context) error {
	if s.client != nil && s.client.IsConnected() {
		s.log.Info().Msg("disconnecting from IRC")
		s.client.Quit("mjrelay shutting down")
	}
	return nil
}

func (s *Session) registerHandlers() {
	s.client.Handlers.Add(girc.CONNECTED, s.onConnected)
	s.client.Handlers.Add(girc.PRIVMSG, s.onPrivmsg)
}

func (s *Session) onConnected(_ *girc.Client, _ girc.Event) {
	nick := s.client.GetNick()
	s.mu.Lock()
	s.selfName = nick
	s.mu.Unlock()
	s.log.Info().Str("nick", nick).Msg("connected to IRC")

	for _, ch := range s.cfg.Channels {
		s.log.Info().Str("channel", ch).Msg("joining channel")
		s.client.Cmd.Join(ch)
	}

	s.emit(chat.Event{Login: &chat.LoginEvent{Name: nick}})
}

func (s *Session) onPrivmsg(_ *girc.Client, e girc.Event) {
	if e.Source == nil {
		return
	}

	msg := &domain.Message{
		Sender:    e.Source.Name,
		Kind:      domain.KindText,
		Text:      e.Last(),
		Timestamp: time.Now(),
		Self:      e.Source.Name == s.client.GetNick(),
	}
	if e.IsFromChannel() {
		msg.Group = e.Params[0]
	}

	s.emit(chat.Event{Message: msg})
}

func (s *Session) emit(evt chat.Event) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler != nil {
		handler(evt)
	}
}

// FindContact looks up a nick in the client state.
func (s *Session) FindContact(ctx context.Context, name string) (domain.Destination, bool, error) {
	if s.client == nil || !s.client.IsConnected() {
		return domain.Destination{}, false, fmt.Errorf("irc: not connected")
	}
	if s.client.LookupUser(name) == nil {
		return domain.Destination{}, false, nil
	}
	return domain.Destination{Kind: domain.DestContact, Name: name}, true, nil
}

// FindGroup looks up a joined channel by name.
func (s *Session) FindGroup(ctx context.Context, topic string) (domain.Destination, bool, error) {
	if s.client == nil || !s.client.IsConnected() {
		return domain.Destination{}, false, fmt.Errorf("irc: not connected")
	}
	if s.client.LookupChannel(topic) == nil {
		return domain.Destination{}, false, nil
	}
	return domain.Destination{Kind: domain.DestGroup, Name: topic}, true, nil
}

// SendText delivers a text message, splitting long bodies into protocol
// sized lines.
func (s *Session) SendText(ctx context.Context, dest domain.Destination, text string) error {
	if s.client == nil || !s.client.IsConnected() {
		return fmt.Errorf("irc: not connected")
	}
	for _, line := range splitMessage(text, ircLineLimit) {
		s.client.Cmd.Message(dest.Name, line)
	}
	s.log.Debug().Str("to", dest.Name).Msg("sent IRC message")
	return nil
}

// SendImage delivers an image as its URL. Pre-downloaded bytes cannot ride
// IRC, so only URL references are supported.
func (s *Session) SendImage(ctx context.Context, dest domain.Destination, img domain.Image) error {
	if img.URL == "" {
		return fmt.Errorf("irc: image bytes cannot be sent, no url available")
	}
	return s.SendText(ctx, dest, img.URL)
}

// splitMessage breaks text into newline-separated lines, chunking any line
// longer than limit bytes.
func splitMessage(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		for len(line) > limit {
			out = append(out, line[:limit])
			line = line[limit:]
		}
		out = append(out, line)
	}
	return out
}
