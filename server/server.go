// Package server exposes a loaded embedding model over HTTP/JSON.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"e5_server/embedding"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP interface and the shared, read-only model handle.
type Server struct {
	model      embedding.Model
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds the router for model. The model must already be loaded.
func New(model embedding.Model, addr string) *Server {
	s := &Server{
		model:  model,
		engine: gin.New(),
	}

	// logging sits outside recovery so recovered panics are logged with their 500
	s.engine.Use(
		RequestIDMiddleware(),
		LoggingMiddleware(),
		RecoveryMiddleware(),
		CORSMiddleware(),
	)
	s.registerHandlers()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	return s
}

func (s *Server) registerHandlers() {
	s.engine.POST("/embed", s.EmbedHandle)
	s.engine.POST("/batch", s.BatchHandle)
	s.engine.GET("/health", s.HealthHandle)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Serve accepts connections on lis until Shutdown.
func (s *Server) Serve(lis net.Listener) error {
	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
