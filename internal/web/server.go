// Package web provides an HTTP status server for the device.
package web

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/status"
)

// Stream timing for /ws clients: the status is checked every push interval
// and sent when it changed, or at least once per keepalive.
const (
	DefaultPushInterval = 100 * time.Millisecond
	DefaultKeepalive    = 5 * time.Second
)

// Server serves the status page over HTTP.
type Server struct {
	ctx        context.Context
	httpServer *http.Server
	tracker    *status.Tracker
	upgrader   websocket.Upgrader

	// PushInterval is how often /ws streams look for changes.
	PushInterval time.Duration
	// Keepalive bounds the time between two /ws messages.
	Keepalive time.Duration

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a Server that reads state from the given tracker.
func New(ctx context.Context, addr string, tracker *status.Tracker) *Server {
	s := &Server{
		ctx:          logger.WithName(ctx, "web"),
		tracker:      tracker,
		upgrader:     websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		PushInterval: DefaultPushInterval,
		Keepalive:    DefaultKeepalive,
		quit:         make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown closes the websocket streams and gracefully shuts down the
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.quitOnce.Do(func() { close(s.quit) })
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		logger.WarnKV(s.ctx, "render status page", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleWS streams the status JSON on change until the client goes away or
// the server shuts down.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.DebugKV(s.ctx, "websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	logger.DebugKV(s.ctx, "websocket client connected", "remote", r.RemoteAddr)

	// Client messages are ignored; reading is how a close is noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.PushInterval)
	defer ticker.Stop()

	var (
		sentVersion uint64
		sentAt      time.Time
		first       = true
	)
	for {
		v := s.tracker.Version()
		if first || v != sentVersion || time.Since(sentAt) >= s.Keepalive {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, status.FormatJSON(s.tracker.Snapshot())); err != nil {
				logger.DebugKV(s.ctx, "websocket write", "error", err)
				return
			}
			first = false
			sentVersion = v
			sentAt = time.Now()
		}

		select {
		case <-gone:
			return
		case <-s.quit:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(time.Second))
			return
		case <-ticker.C:
		}
	}
}
