package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/s3-bucket-manager/internal/s3manager"
)

// BucketManager is the bucket lifecycle surface the handlers need.
// *s3manager.Manager satisfies it; tests substitute a mock.
type BucketManager interface {
	CreateBucket(ctx context.Context, bucketName string) bool
	ListBuckets(ctx context.Context) ([]s3manager.BucketDescriptor, error)
	DeleteBucket(ctx context.Context, bucketName string) error
}

type createBucketRequest struct {
	BucketName string `json:"bucket_name"`
}

// writeJSON writes a JSON response with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response with a "detail" field.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

// handleRoot provides general information about the service
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the S3 Bucket Manager. Use /list-s3-buckets to get started.",
	})
}

// handleGenerateBucketName suggests a globally unique S3 bucket name
func (s *Server) handleGenerateBucketName(w http.ResponseWriter, r *http.Request) {
	name := GenerateBucketName(time.Now())
	s.logger.WithField("suggested_name", name).Info("Generated unique bucket name suggestion")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"suggested_bucket_name": name,
	})
}

// handleCreateBucket creates a new S3 bucket. Concurrent requests for the
// same bucket name are not serialized; the create call is idempotent for a
// bucket the caller already owns, so the race is harmless for creation.
func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var req createBucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be JSON with a 'bucket_name' field")
		return
	}
	if req.BucketName == "" {
		s.writeError(w, http.StatusBadRequest, "'bucket_name' must not be empty")
		return
	}

	s.logger.WithField("bucket", req.BucketName).Info("Received request to create S3 bucket")

	if s.manager == nil {
		s.writeError(w, http.StatusInternalServerError, "S3 manager not initialized")
		return
	}

	if !s.manager.CreateBucket(r.Context(), req.BucketName) {
		s.writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to create bucket '%s'. Check logs for details.", req.BucketName))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Bucket '%s' creation initiated successfully in region '%s'.", req.BucketName, s.region),
	})
}

// handleListBuckets lists all S3 buckets in the account
func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Received request to list S3 buckets")

	if s.manager == nil {
		s.writeError(w, http.StatusInternalServerError, "S3 manager not initialized")
		return
	}

	buckets, err := s.manager.ListBuckets(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Unexpected error during S3 bucket listing")
		s.writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"buckets": buckets,
	})
}

// handleDeleteBucket empties and deletes an S3 bucket. Deletion is
// destructive and cannot be undone.
func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	bucketName := mux.Vars(r)["bucket_name"]
	s.logger.WithField("bucket", bucketName).Info("Received request to delete S3 bucket")

	if s.manager == nil {
		s.writeError(w, http.StatusInternalServerError, "S3 manager not initialized")
		return
	}

	if err := s.manager.DeleteBucket(r.Context(), bucketName); err != nil {
		var deleteErr *s3manager.DeleteError
		if errors.As(err, &deleteErr) {
			s.writeError(w, deleteErr.HTTPStatus(), deleteErrorDetail(bucketName, deleteErr))
			return
		}
		s.logger.WithError(err).Error("Unexpected error during S3 bucket deletion")
		s.writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("S3 bucket '%s' deleted successfully.", bucketName),
	})
}

// deleteErrorDetail renders the client-facing message for a classified
// deletion failure
func deleteErrorDetail(bucketName string, err *s3manager.DeleteError) string {
	switch err.Kind {
	case s3manager.DeleteNotFound:
		return fmt.Sprintf("Bucket '%s' not found.", bucketName)
	case s3manager.DeleteForbidden:
		return fmt.Sprintf("Access denied to delete bucket '%s'. Check AWS permissions.", bucketName)
	case s3manager.DeleteConflict:
		return fmt.Sprintf("Bucket '%s' is not empty after emptying attempt. Manual verification needed.", bucketName)
	default:
		if err.Code != "" {
			return fmt.Sprintf("AWS error during deletion: Code=%s, Message=%s", err.Code, err.Message)
		}
		return fmt.Sprintf("An unexpected error occurred: %v", err.Err)
	}
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.config.LogHealthRequests {
		s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"remote": r.RemoteAddr,
		}).Debug("Health check request")
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleVersion reports build information
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version":    s.buildInfo.Version,
		"commit":     s.buildInfo.Commit,
		"build_time": s.buildInfo.BuildTime,
	})
}
