// Package feed serves a read-only spectator view of the game over HTTP and
// websockets. The human player's hole cards are withheld until a showdown.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lox/headsup/internal/game"
)

// MessageTypeSnapshot is sent to a websocket client right after it connects.
const MessageTypeSnapshot game.EventType = "snapshot"

// Message is one websocket frame.
type Message struct {
	Type      game.EventType `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	State     game.Snapshot  `json:"state"`
}

// Server keeps the latest snapshot and broadcasts every engine event to
// connected clients. It implements game.EventSubscriber.
type Server struct {
	*mux.Router

	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.RWMutex
	latest  *Message
	clients map[*client]struct{}
}

// NewServer creates a feed with routes /health, /state and /ws.
func NewServer(logger *log.Logger) *Server {
	s := &Server{
		Router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			// The feed is read-only and carries no credentials.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:  logger.WithPrefix("feed"),
		clients: make(map[*client]struct{}),
	}

	s.Methods(http.MethodGet).Path("/health").HandlerFunc(s.handleHealth)
	s.Methods(http.MethodGet).Path("/state").HandlerFunc(s.handleState)
	s.Methods(http.MethodGet).Path("/ws").HandlerFunc(s.handleWebSocket)
	return s
}

// OnEvent records the event's snapshot and queues it for every client. It
// never blocks the engine: a client that cannot keep up is dropped.
func (s *Server) OnEvent(event game.GameEvent) {
	msg := &Message{
		Type:      event.EventType(),
		Timestamp: event.Timestamp(),
		State:     event.State().Redacted(),
	}

	s.mu.Lock()
	s.latest = msg
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if !c.enqueue(msg) {
			s.logger.Warn("Client send buffer full, disconnecting", "remote", c.remote)
			s.unregister(c)
		}
	}
	s.logger.Debug("Broadcast event", "type", msg.Type, "hand", msg.State.HandNumber, "recipients", len(clients))
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// client.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	s.logger.Info("Serving spectator feed", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no game in progress"})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, r.RemoteAddr)

	s.mu.Lock()
	s.clients[c] = struct{}{}
	latest := s.latest
	total := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("Spectator connected", "remote", c.remote, "total", total)

	if latest != nil {
		c.enqueue(&Message{Type: MessageTypeSnapshot, Timestamp: latest.Timestamp, State: latest.State})
	}

	go c.writePump(s.logger)
	go func() {
		c.readPump()
		s.unregister(c)
	}()
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	total := len(s.clients)
	s.mu.Unlock()

	if ok {
		c.close()
		s.logger.Info("Spectator disconnected", "remote", c.remote, "total", total)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
