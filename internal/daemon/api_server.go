package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studioload/internal/config"
	"studioload/internal/logging"
	"studioload/internal/risk"
	"studioload/internal/snapshot"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// RisksResponse is the /api/risks payload.
type RisksResponse struct {
	Today time.Time      `json:"today"`
	Risks []risk.Finding `json:"risks"`
}

// SnapshotsResponse is the /api/snapshots payload.
type SnapshotsResponse struct {
	Rows []snapshot.Row `json:"rows"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(cfg.Paths.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.requireToken(token, s.handleStatus))
	mux.HandleFunc("/api/dashboard", s.requireToken(token, s.handleDashboard))
	mux.HandleFunc("/api/risks", s.requireToken(token, s.handleRisks))
	mux.HandleFunc("/api/snapshots", s.requireToken(token, s.handleSnapshots))
	return s.withRequestID(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
}

func (s *apiServer) addr() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	view, err := s.daemon.Dashboard(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *apiServer) handleRisks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	view, err := s.daemon.Dashboard(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, RisksResponse{
		Today: view.Dashboard.Today,
		Risks: view.Dashboard.Risks,
	})
}

func (s *apiServer) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid from date: "+err.Error())
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, "invalid to date: "+err.Error())
		return
	}
	rows, err := s.daemon.store.List(r.Context(), from, to)
	if err != nil {
		s.writeError(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []snapshot.Row{}
	}
	s.writeJSON(r.Context(), w, http.StatusOK, SnapshotsResponse{Rows: rows})
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, value)
}

func (s *apiServer) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(ctx, s.logger).Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		logging.WithContext(ctx, s.logger).Warn("api request failed",
			logging.Int("status", status),
			logging.String("error_message", message),
		)
	}
	s.writeJSON(ctx, w, status, map[string]string{"error": message})
}
