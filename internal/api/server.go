// Package api exposes the ticket store over REST. Handlers only parse
// parameters, call the service, and map results to responses; all
// non-trivial logic stays in the store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/modq-io/modq/internal/logbuf"
	"github.com/modq-io/modq/internal/notify"
	"github.com/modq-io/modq/internal/ticket"
	"github.com/modq-io/modq/pkg/protocol"
)

const (
	defaultPage     = 0
	defaultPageSize = 20
)

// LogQuerier abstracts log entry querying to avoid coupling to logbuf directly.
type LogQuerier interface {
	Query(since time.Time, minLevel slog.Level, limit int) []logbuf.Entry
}

// TicketService is the interface the API server needs from the store.
type TicketService interface {
	List(f ticket.Filter) ticket.Page
	Counts() map[protocol.Status]int
	Get(id string) (*protocol.Ticket, error)
	GetMessage(id string) (*protocol.Message, error)
	ContextMessages(id string) ([]*protocol.Message, error)
	Close(id string) (*protocol.Ticket, error)
	Remove(id string) (*protocol.Ticket, error)
}

// Config holds API server configuration.
type Config struct {
	Host string
	Port int
	Key  string // API key for Bearer auth; empty disables auth
}

// Server is the modq REST API server.
type Server struct {
	svc      TicketService
	cfg      Config
	logger   *slog.Logger
	logs     LogQuerier
	notifier notify.Notifier
	srv      *http.Server
}

// NewServer creates a new API server. logs and notifier may be nil.
func NewServer(svc TicketService, cfg Config, logger *slog.Logger, logs LogQuerier, notifier notify.Notifier) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:      svc,
		cfg:      cfg,
		logger:   logger,
		logs:     logs,
		notifier: notifier,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/tickets", s.requireAuth(s.handleListTickets))
	mux.HandleFunc("GET /api/v1/tickets/counts", s.requireAuth(s.handleTicketCounts))
	mux.HandleFunc("GET /api/v1/tickets/{id}", s.requireAuth(s.handleGetTicket))
	mux.HandleFunc("GET /api/v1/tickets/{id}/messages", s.requireAuth(s.handleContextMessages))
	mux.HandleFunc("PUT /api/v1/tickets/{id}", s.requireAuth(s.handleCloseTicket))
	mux.HandleFunc("DELETE /api/v1/tickets/{id}", s.requireAuth(s.handleRemoveTicket))
	mux.HandleFunc("GET /api/v1/messages/{id}", s.requireAuth(s.handleGetMessage))
	mux.HandleFunc("GET /api/logs", s.requireAuth(s.handleGetLogs))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.corsMiddleware(s.requestIDMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.logger.Info("api server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		s.logger.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Key == "" {
			next(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.cfg.Key {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ticket.Filter{PageNum: defaultPage, PageSize: defaultPageSize}
	var err error
	if filter.PageNum, err = nonNegativeInt(q.Get("page"), defaultPage); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("page: %w", err))
		return
	}
	if filter.PageSize, err = nonNegativeInt(q.Get("page_size"), defaultPageSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("page_size: %w", err))
		return
	}
	filter.Author = q.Get("author")
	filter.Content = q.Get("msg_content")
	for _, raw := range strings.Split(q.Get("status"), ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		status, err := protocol.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("status: %w", err))
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if filter.Since, err = timeBound(q.Get("timestamp_start")); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("timestamp_start: %w", err))
		return
	}
	if filter.Until, err = timeBound(q.Get("timestamp_end")); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("timestamp_end: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, s.svc.List(filter))
}

func (s *Server) handleTicketCounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Counts())
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Get(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleContextMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.ContextMessages(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleCloseTicket(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Close(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.notifyStatusChange(r.Context(), t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemoveTicket(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Remove(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.notifyStatusChange(r.Context(), t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.svc.GetMessage(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusOK, []logbuf.Entry{})
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	minLevel := slog.LevelDebug
	if lvl := r.URL.Query().Get("level"); lvl != "" {
		switch strings.ToLower(lvl) {
		case "info":
			minLevel = slog.LevelInfo
		case "warn":
			minLevel = slog.LevelWarn
		case "error":
			minLevel = slog.LevelError
		}
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = time.UnixMilli(ms)
		}
	}

	entries := s.logs.Query(since, minLevel, limit)
	if entries == nil {
		entries = []logbuf.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Helpers ---

func (s *Server) notifyStatusChange(ctx context.Context, t *protocol.Ticket) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TicketStatusChanged(ctx, t); err != nil {
		s.logger.Warn("status change notification failed", "ticket", t.ID, "error", err)
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var nf *ticket.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, nf)
		return
	}
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err)
}

func nonNegativeInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("must be greater than or equal to 0")
	}
	return n, nil
}

func timeBound(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a timestamp", raw)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
