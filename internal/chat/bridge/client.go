// Package bridge implements the chat session over a websocket connection to
// the puppet bridge process that owns the actual messaging account.
package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/config"
	"github.com/soyeahso/mjrelay/internal/domain"
	"github.com/soyeahso/mjrelay/internal/logging"
)

const (
	dialTimeout    = 15 * time.Second
	requestTimeout = 30 * time.Second
	maxPayload     = 16 * 1024 * 1024 // images ride this connection as base64
)

// Session implements chat.Session over the bridge protocol.
type Session struct {
	cfg config.BridgeConfig
	log *logging.Logger

	mu       sync.RWMutex
	conn     *websocket.Conn
	selfName string
	handler  func(chat.Event)
	pending  map[string]chan Frame

	events  chan chat.Event
	writeMu sync.Mutex
}

// New creates a bridge session. selfName is the display name reported
// before the login event arrives.
func New(cfg config.BridgeConfig, selfName string, log *logging.Logger) *Session {
	return &Session{
		cfg:      cfg,
		selfName: selfName,
		log:      log.Sub("bridge"),
		pending:  make(map[string]chan Frame),
		events:   make(chan chat.Event, 64),
	}
}

// OnEvent registers the session event handler.
func (s *Session) OnEvent(handler func(evt chat.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// SelfName returns the bot account's display name.
func (s *Session) SelfName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfName
}

// Start dials the bridge and runs the read loop. It blocks until the
// context is cancelled or the connection drops.
func (s *Session) Start(ctx context.Context) error {
	header := http.Header{}
	if s.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("dialing bridge %s: %w", s.cfg.URL, err)
	}
	conn.SetReadLimit(maxPayload)

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.log.Info().Str("url", s.cfg.URL).Msg("connected to puppet bridge")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	// Events are handled one at a time off the read loop, so a handler can
	// issue bridge calls without blocking its own responses.
	go s.eventLoop(ctx)

	return s.readLoop(ctx, conn)
}

// Stop closes the connection.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	return conn.Close()
}

// readLoop dispatches inbound frames. Events are handled to completion one
// at a time, so handlers never observe concurrent passes.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Info().Msg("bridge closed the connection")
				return nil
			}
			return fmt.Errorf("reading bridge frame: %w", err)
		}

		switch frame.Type {
		case FrameTypeResponse:
			s.routeResponse(frame)
		case FrameTypeEvent:
			s.dispatchEvent(frame)
		default:
			s.log.Debug().Str("type", frame.Type).Msg("ignoring unexpected frame")
		}
	}
}

// eventLoop delivers session events to the handler sequentially.
func (s *Session) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.events:
			s.mu.RLock()
			handler := s.handler
			s.mu.RUnlock()
			if handler != nil {
				handler(evt)
			}
		}
	}
}

func (s *Session) routeResponse(frame Frame) {
	s.mu.Lock()
	ch, ok := s.pending[frame.ID]
	if ok {
		delete(s.pending, frame.ID)
	}
	s.mu.Unlock()
	if !ok {
		s.log.Warn().Str("id", frame.ID).Msg("response for unknown request")
		return
	}
	ch <- frame
}

func (s *Session) dispatchEvent(frame Frame) {
	switch frame.Event {
	case EventScan:
		var p scanPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			s.log.Warn().Err(err).Msg("bad scan payload")
			return
		}
		s.log.Info().
			Str("url", "https://wechaty.js.org/qrcode/"+url.QueryEscape(p.QRCode)).
			Msg("scan qrcode to login")
		s.enqueue(chat.Event{Scan: &chat.ScanEvent{QRCode: p.QRCode}})

	case EventLogin:
		var p loginPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			s.log.Warn().Err(err).Msg("bad login payload")
			return
		}
		s.mu.Lock()
		s.selfName = p.Name
		s.mu.Unlock()
		s.log.Info().Str("name", p.Name).Msg("login success")
		s.enqueue(chat.Event{Login: &chat.LoginEvent{Name: p.Name}})

	case EventMessage:
		var p messagePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			s.log.Warn().Err(err).Msg("bad message payload")
			return
		}
		s.enqueue(chat.Event{Message: s.toMessage(p)})

	default:
		s.log.Debug().Str("event", frame.Event).Msg("ignoring unknown event")
	}
}

func (s *Session) enqueue(evt chat.Event) {
	select {
	case s.events <- evt:
	default:
		s.log.Warn().Msg("event queue full, dropping event")
	}
}

func (s *Session) toMessage(p messagePayload) *domain.Message {
	msg := &domain.Message{
		Sender:    p.Sender,
		Group:     p.Group,
		Kind:      domain.MessageKind(p.Kind),
		Text:      p.Text,
		Timestamp: time.UnixMilli(p.Timestamp),
		Self:      p.Self,
	}
	if p.ImageID != "" {
		imageID := p.ImageID
		msg.Image = func(ctx context.Context) ([]byte, error) {
			return s.downloadImage(ctx, imageID)
		}
	}
	return msg
}

// call issues one request and waits for its response.
func (s *Session) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return nil, fmt.Errorf("bridge not connected")
	}

	frame, err := NewRequest(uuid.New().String(), method, params)
	if err != nil {
		return nil, err
	}

	ch := make(chan Frame, 1)
	s.mu.Lock()
	s.pending[frame.ID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, frame.ID)
		s.mu.Unlock()
	}()

	s.writeMu.Lock()
	err = conn.WriteJSON(frame)
	s.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", method, err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if !resp.OK {
			if resp.Error != nil {
				return nil, resp.Error
			}
			return nil, fmt.Errorf("%s request failed", method)
		}
		return resp.Result, nil
	case <-timer.C:
		return nil, fmt.Errorf("%s request timed out", method)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FindContact looks up a direct contact by exact display name.
func (s *Session) FindContact(ctx context.Context, name string) (domain.Destination, bool, error) {
	raw, err := s.call(ctx, MethodFindContact, findParams{Name: name})
	if err != nil {
		return domain.Destination{}, false, err
	}
	var res findResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.Destination{}, false, fmt.Errorf("decoding findContact result: %w", err)
	}
	if !res.Found {
		return domain.Destination{}, false, nil
	}
	return domain.Destination{Kind: domain.DestContact, Name: name}, true, nil
}

// FindGroup looks up a group chat by exact topic.
func (s *Session) FindGroup(ctx context.Context, topic string) (domain.Destination, bool, error) {
	raw, err := s.call(ctx, MethodFindGroup, findParams{Name: topic})
	if err != nil {
		return domain.Destination{}, false, err
	}
	var res findResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.Destination{}, false, fmt.Errorf("decoding findGroup result: %w", err)
	}
	if !res.Found {
		return domain.Destination{}, false, nil
	}
	return domain.Destination{Kind: domain.DestGroup, Name: topic}, true, nil
}

// SendText delivers a text message.
func (s *Session) SendText(ctx context.Context, dest domain.Destination, text string) error {
	_, err := s.call(ctx, MethodSend, sendParams{
		To:   target{Kind: string(dest.Kind), Name: dest.Name},
		Text: text,
	})
	return err
}

// SendImage delivers an image, either by URL for the bridge to fetch or as
// pre-downloaded bytes.
func (s *Session) SendImage(ctx context.Context, dest domain.Destination, img domain.Image) error {
	params := sendImageParams{
		To:       target{Kind: string(dest.Kind), Name: dest.Name},
		Filename: img.Filename,
	}
	if len(img.Data) > 0 {
		params.Data = base64.StdEncoding.EncodeToString(img.Data)
	} else {
		params.URL = img.URL
	}
	_, err := s.call(ctx, MethodSendImage, params)
	return err
}

// downloadImage fetches the raw bytes of an inbound image message.
func (s *Session) downloadImage(ctx context.Context, imageID string) ([]byte, error) {
	raw, err := s.call(ctx, MethodDownloadImage, downloadImageParams{ImageID: imageID})
	if err != nil {
		return nil, err
	}
	var res downloadImageResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decoding downloadImage result: %w", err)
	}
	return base64.StdEncoding.DecodeString(res.Data)
}
