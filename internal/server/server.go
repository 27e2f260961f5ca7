// Package server is the HTTP layer over the bucket manager. Both the Vault
// client and the S3 manager are constructed once at startup and injected;
// handlers hold no mutable cross-request state.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/s3-bucket-manager/internal/config"
)

// BuildInfo carries version information injected at build time
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server represents the bucket management HTTP server
type Server struct {
	httpServer *http.Server
	manager    BucketManager
	region     string
	config     *config.Config
	logger     *logrus.Entry
	buildInfo  BuildInfo
}

// NewServer creates a new server instance around an already-constructed
// bucket manager
func NewServer(cfg *config.Config, manager BucketManager, buildInfo BuildInfo) *Server {
	server := &Server{
		manager:   manager,
		region:    cfg.S3.Region,
		config:    cfg,
		logger:    logrus.WithField("component", "http-server"),
		buildInfo: buildInfo,
	}

	router := mux.NewRouter()
	server.setupRoutes(router)

	server.httpServer = &http.Server{
		Addr:         cfg.BindAddress,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled or
// the server fails. On cancellation the server drains within the configured
// shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	serverErrChan := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.config.BindAddress).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErrChan:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.config.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("Failed to gracefully shutdown server")
			return err
		}

		s.logger.Info("Server stopped")
		return nil
	}
}
