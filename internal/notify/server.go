package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/mjrelay/internal/chat"
	"github.com/soyeahso/mjrelay/internal/logging"
)

// Server exposes the proxy-facing webhook listener.
type Server struct {
	relay      *Relay
	port       int
	log        *logging.Logger
	httpServer *http.Server
}

// NewServer creates a webhook server on the given port (default 80 when 0).
func NewServer(relay *Relay, port int, log *logging.Logger) *Server {
	if port == 0 {
		port = 80
	}
	return &Server{
		relay: relay,
		port:  port,
		log:   log.Sub("notify-server"),
	}
}

// Start begins listening. It blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /notify", s.handleNotify)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	addr := fmt.Sprintf(":%d", s.port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withMiddleware(mux, s.log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("notify listener starting")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down notify listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// handleNotify decodes the webhook payload and relays it. Responses:
// 200 {"code":1}, 404 plain text when the destination is unknown,
// 500 {"code":-9} on anything else.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var evt Event
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		s.log.Warn().Err(err).Msg("bad notify payload")
		writeCode(w, http.StatusInternalServerError, -9)
		return
	}

	err := s.relay.Handle(r.Context(), evt)
	switch {
	case err == nil:
		writeCode(w, http.StatusOK, 1)
	case errors.Is(err, chat.ErrDestinationNotFound):
		s.log.Warn().Str("state", evt.State).Msg("notification destination not found")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("destination not found"))
	default:
		s.log.Error().Err(err).Str("state", evt.State).Msg("relaying notification failed")
		writeCode(w, http.StatusInternalServerError, -9)
	}
}

func writeCode(w http.ResponseWriter, status, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]int{"code": code})
}

// withMiddleware wraps a handler with request IDs and request logging.
func withMiddleware(handler http.Handler, log *logging.Logger) http.Handler {
	h := handler
	h = requestIDMiddleware(h)
	h = loggingMiddleware(h, log)
	return h
}

// loggingMiddleware logs each HTTP request.
func loggingMiddleware(next http.Handler, log *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

// requestIDMiddleware adds a unique request ID to each request/response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
