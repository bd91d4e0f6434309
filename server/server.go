// Package server exposes the valuation engine over a JSON HTTP API and runs
// the scheduled live-quote refresh.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stvnw/fundval"
	"github.com/stvnw/fundval/store"
)

// Options assembles the server's collaborators.
type Options struct {
	Port  int
	Log   zerolog.Logger
	Store *store.Store
	// Quotes is the live quote source. Nil disables the refresh endpoint
	// and the scheduled job.
	Quotes *fundval.QuoteFeed
	// Now is the clock used for "today" calculations; defaults to time.Now.
	Now func() time.Time
}

// Server is the HTTP front of the valuation engine.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	store  *store.Store
	quotes *fundval.QuoteFeed
	now    func() time.Time
}

// New builds a server from its options. Routes and middleware are fixed.
func New(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		router: chi.NewRouter(),
		log:    opts.Log.With().Str("component", "server").Logger(),
		store:  opts.Store,
		quotes: opts.Quotes,
		now:    now,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/funds", func(r chi.Router) {
			r.Get("/", s.handleListFunds)
			r.Post("/", s.handleSaveFund)
			r.Get("/items", s.handleFundItems)
			r.Get("/lines", s.handleFundLines)
			r.Get("/lines/{mode}", s.handleFundLinesMode)
			r.Delete("/{id}", s.handleDeleteFund)
			r.Get("/{id}/prices", s.handleFundPrices)
		})

		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/cash", s.handleCash)
		r.Post("/snapshots", s.handleAddSnapshot)

		r.Route("/buckets", func(r chi.Router) {
			r.Get("/", s.handleBuckets)
			r.Post("/", s.handleUpsertBucket)
			r.Put("/investment", s.handleSetInvestmentBucket)
		})

		r.Post("/quotes/refresh", s.handleRefreshQuotes)
	})
}

// Handler returns the routing tree, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
