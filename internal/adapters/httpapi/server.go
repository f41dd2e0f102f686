package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// Server exposes the triage service over a JSON HTTP API
type Server struct {
	service    *core.TriageService
	repo       core.EmailRepository
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a new API server listening on addr
func NewServer(addr string, service *core.TriageService, repo core.EmailRepository, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		repo:    repo,
		logger:  logger,
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api/emails", func(r chi.Router) {
		r.Get("/", s.handleListEmails)
		r.Get("/urgent", s.handleUrgentEmails)
		r.Get("/unprocessed", s.handleUnprocessedEmails)
		r.Post("/fetch", s.handleFetch)
		r.Get("/{emailID}", s.handleGetEmail)
		r.Put("/{emailID}", s.handleUpdateEmail)
		r.Delete("/{emailID}", s.handleDeleteEmail)
		r.Post("/{emailID}/generate-response", s.handleGenerateResponse)
		r.Post("/{emailID}/send-response", s.handleSendResponse)
		r.Post("/{emailID}/mark-processed", s.handleMarkProcessed)
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/stats", s.handleDashboardStats)
		r.Get("/recent-emails", s.handleRecentEmails)
	})

	return r
}

// requestLogger logs each request through the structured logger
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// Start begins serving requests, blocking until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
