package server

import (
	"github.com/gorilla/mux"

	"github.com/guided-traffic/s3-bucket-manager/internal/monitoring"
	"github.com/guided-traffic/s3-bucket-manager/internal/server/middleware"
)

// setupRoutes configures the HTTP routes for the bucket management API
func (s *Server) setupRoutes(router *mux.Router) {
	// Add monitoring middleware if monitoring is enabled
	if s.config.Monitoring.Enabled {
		router.Use(monitoring.HTTPMiddleware)
	}

	// Health and version endpoints - before the API middleware chain
	healthRouter := router.NewRoute().Subrouter()
	healthRouter.HandleFunc("/health", s.handleHealth).Methods("GET")
	healthRouter.HandleFunc("/version", s.handleVersion).Methods("GET")

	// API endpoints - order matters: request IDs first so logging sees them
	apiRouter := router.NewRoute().Subrouter()
	apiRouter.Use(middleware.RequestID)
	apiRouter.Use(middleware.NewLogger(s.logger, s.config.LogHealthRequests).Middleware)

	apiRouter.HandleFunc("/", s.handleRoot).Methods("GET")
	apiRouter.HandleFunc("/generate-unique-bucket-name", s.handleGenerateBucketName).Methods("GET")
	apiRouter.HandleFunc("/create-s3-bucket", s.handleCreateBucket).Methods("POST")
	apiRouter.HandleFunc("/list-s3-buckets", s.handleListBuckets).Methods("GET")
	apiRouter.HandleFunc("/delete-s3-bucket/{bucket_name}", s.handleDeleteBucket).Methods("DELETE")
}
