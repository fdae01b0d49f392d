// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"policy-assistant/internal/assistant"
	"policy-assistant/internal/common/config"
	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/generation"
	"policy-assistant/internal/tools"
)

// QueryProcessor is the session-aware pipeline behind the assistant endpoint.
type QueryProcessor interface {
	Process(ctx context.Context, req assistant.Request) (*assistant.Response, error)
}

// Server is the HTTP surface of the assistant: a plain retrieval endpoint, a
// session-aware assistant endpoint, tool discovery, health and metrics.
type Server struct {
	cfg        config.ServerConfig
	appVersion string

	processor QueryProcessor
	searcher  assistant.ContextSearcher
	generator generation.Generator
	registry  *tools.Registry

	logger     logger.Logger
	httpServer *http.Server
}

func New(
	cfg config.ServerConfig,
	appVersion string,
	processor QueryProcessor,
	searcher assistant.ContextSearcher,
	generator generation.Generator,
	registry *tools.Registry,
	log logger.Logger,
) *Server {
	s := &Server{
		cfg:        cfg,
		appVersion: appVersion,
		processor:  processor,
		searcher:   searcher,
		generator:  generator,
		registry:   registry,
		logger:     log.WithFields(map[string]interface{}{"component": "http-server"}),
	}

	readTimeout := time.Duration(cfg.ReadTimeout) * time.Millisecond
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := time.Duration(cfg.WriteTimeout) * time.Millisecond
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Router builds the route table. Exposed separately so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/mcp/query", s.handleAssistantQuery).Methods(http.MethodPost)
	r.HandleFunc("/mcp/tools", s.handleToolCatalog).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"addr": s.cfg.Addr(),
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
