// Package server is the daemon's HTTP control plane. It exposes liveness
// and readiness probes, the Prometheus metrics endpoint, and a small v1 API
// for inspecting and toggling the voice listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmorales/fastaccess/internal/catalog"
	"github.com/dmorales/fastaccess/internal/health"
	"github.com/dmorales/fastaccess/internal/listener"
	"github.com/dmorales/fastaccess/internal/observe"
)

// shutdownTimeout bounds graceful shutdown once the run context is done.
const shutdownTimeout = 5 * time.Second

// statusResponse is the GET /v1/status body.
type statusResponse struct {
	Active   bool   `json:"active"`
	State    string `json:"state"`
	Commands int    `json:"commands"`
	Groups   int    `json:"groups"`
}

// voiceRequest is the POST /v1/voice body.
type voiceRequest struct {
	Active *bool `json:"active"`
}

// Server wires the control plane routes over an [http.Server].
type Server struct {
	addr     string
	listener *listener.Listener
	store    *catalog.Store
	metrics  *observe.Metrics
	health   *health.Handler
}

// New creates a Server listening on addr once [Server.Run] is called.
func New(addr string, l *listener.Listener, store *catalog.Store,
	metrics *observe.Metrics, checkers []health.Checker) *Server {
	return &Server{
		addr:     addr,
		listener: l,
		store:    store,
		metrics:  metrics,
		health:   health.New(checkers),
	}
}

// Handler builds the full route table wrapped in the observability
// middleware. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/voice", s.handleVoice)
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("control plane listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return err
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Active:   s.listener.Active(),
		State:    s.listener.State().String(),
		Commands: len(snap.CommandNames),
		Groups:   len(snap.GroupNames),
	})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Active == nil {
		http.Error(w, `{"error":"field \"active\" is required"}`, http.StatusBadRequest)
		return
	}

	s.listener.SetActive(*req.Active)
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Active:   s.listener.Active(),
		State:    s.listener.State().String(),
		Commands: len(snap.CommandNames),
		Groups:   len(snap.GroupNames),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
