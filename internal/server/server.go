package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pricestream/relay/internal/hub"
	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/resolve"
	"github.com/pricestream/relay/internal/state"
	"github.com/pricestream/relay/internal/version"
)

// FeedStatus reports per-instrument upstream connection state.
type FeedStatus interface {
	Status() map[string]bool
}

// Config holds the HTTP server's tunables.
type Config struct {
	Addr            string
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsPath     string
}

// Deps are the collaborators the server exposes. Everything is injected;
// the server owns none of them.
type Deps struct {
	Table    *state.Table
	Queue    *state.Queue[model.PricePoint]
	Hub      *hub.Hub
	Resolver *resolve.Resolver
	Feed     FeedStatus
	Metrics  http.Handler
}

// Server exposes the relay over HTTP: the subscriber WebSocket, price
// lookups, health, diagnostics and metrics.
type Server struct {
	cfg      Config
	deps     Deps
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a Server. Zero config fields fall back to defaults.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/price", s.handlePrice)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/debug/resolve", s.handleDebugResolve)
	if s.deps.Metrics != nil {
		mux.Handle(s.cfg.MetricsPath, s.deps.Metrics)
	}
	return s.recoverMiddleware(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully. In-flight
// requests get ShutdownTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "relayd",
		"version": version.Version,
	})
}

// handlePrice resolves the requested symbols. Partial results are fine;
// only a completely empty result is an upstream failure.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	symbols := parseSymbols(r.URL.Query().Get("symbols"))
	prices, _ := s.deps.Resolver.Resolve(r.Context(), symbols)

	if len(prices) == 0 {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "no price data available"})
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// handleWS upgrades the connection, replays the current table, then keeps
// the session registered until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s.cfg.WriteTimeout)
	s.deps.Hub.Register(sess)
	defer func() {
		s.deps.Hub.Unregister(sess)
		sess.Close()
	}()

	// Catch-up: the latest point per instrument, before live events.
	for _, pt := range s.deps.Table.Snapshot() {
		if err := sess.Send(pt); err != nil {
			s.logger.Warn("catch-up send failed", "id", sess.ID(), "error", err)
			return
		}
	}

	// Inbound messages are read and discarded, this is a push-only feed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string                 `json:"status"`
		Components map[string]interface{} `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]interface{}),
	}

	streams := s.deps.Feed.Status()
	connected := 0
	for _, up := range streams {
		if up {
			connected++
		}
	}
	health.Components["feed"] = map[string]interface{}{
		"streams":   streams,
		"connected": connected,
	}
	if connected == 0 {
		health.Status = "degraded"
	}

	health.Components["subscribers"] = s.deps.Hub.Count()

	stats := s.deps.Queue.Stats()
	health.Components["queue"] = map[string]interface{}{
		"depth":     stats.Count,
		"capacity":  stats.Capacity,
		"enqueued":  stats.TotalEnqueued,
		"delivered": stats.TotalDequeued,
	}

	writeJSON(w, http.StatusOK, health)
}

// handleDebugResolve runs the resolver for the default symbols and returns
// the full trace alongside whatever resolved.
func (s *Server) handleDebugResolve(w http.ResponseWriter, r *http.Request) {
	prices, trace := s.deps.Resolver.Resolve(r.Context(), nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prices": prices,
		"trace":  trace,
	})
}

// recoverMiddleware turns a handler panic into a 500 instead of killing
// the process.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic",
					"path", r.URL.Path,
					"panic", rec,
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func parseSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if sym := model.NormalizeSymbol(p); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
