// Package api implements the HTTP surface from spec §6.1: a chi router over
// the Mutation Coordinator and the securities/accounts catalog. Grounded on
// aristath-sentinel's internal/server/server.go for router/middleware/CORS
// wiring and handlers.go for the writeJSON idiom.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/canledger/acb/catalog"
	"github.com/canledger/acb/coordinator"
)

// Server is the REST surface over a Coordinator and a Catalog.
type Server struct {
	router *chi.Mux
	log    zerolog.Logger

	coord             *coordinator.Coordinator
	cat               *catalog.Catalog
	bulkImportTimeout time.Duration
}

// New builds a Server and wires its routes.
func New(coord *coordinator.Coordinator, cat *catalog.Catalog, log zerolog.Logger) *Server {
	return NewWithBulkImportTimeout(coord, cat, log, coordinator.DefaultSliceTimeout)
}

// NewWithBulkImportTimeout is New with an explicit per-slice bulk-import timeout.
func NewWithBulkImportTimeout(coord *coordinator.Coordinator, cat *catalog.Catalog, log zerolog.Logger, bulkImportTimeout time.Duration) *Server {
	s := &Server{
		router:            chi.NewRouter(),
		log:               log.With().Str("component", "api").Logger(),
		coord:             coord,
		cat:               cat,
		bulkImportTimeout: bulkImportTimeout,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/securities", s.handleCreateSecurity)
		r.Delete("/securities/{id}", s.handleDeleteSecurity)

		r.Post("/accounts", s.handleCreateAccount)
		r.Delete("/accounts/{id}", s.handleDeleteAccount)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Post("/transactions/bulk-import", s.handleBulkImport)
		r.Put("/transactions/{id}", s.handleEditTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/positions", s.handleListPositions)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
