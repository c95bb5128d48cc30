// Package server provides the HTTP API over the analysis core.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"docaudit/internal/catalog"
	"docaudit/internal/config"
	"docaudit/internal/pipeline"
)

// Analyzer is the core surface the handlers call into.
type Analyzer interface {
	Index(ctx context.Context, fileID, source, text string) error
	Analyze(ctx context.Context, fileID, query string) (*pipeline.State, error)
	Remove(ctx context.Context, fileID string) error
	List(ctx context.Context) ([]catalog.Document, error)
}

type Server struct {
	core     Analyzer
	tempRoot string
	config   *config.ServerConfig
	server   *http.Server
}

func NewServer(core Analyzer, tempRoot string, cfg *config.ServerConfig) *Server {
	return &Server{core: core, tempRoot: tempRoot, config: cfg}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/upload", s.handleUpload)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/documents", s.handleListDocuments)
	r.Delete("/documents/{fileID}", s.handleDeleteDocument)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	log.Info().Str("addr", addr).Msg("Starting server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
