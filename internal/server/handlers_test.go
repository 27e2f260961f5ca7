package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guided-traffic/s3-bucket-manager/internal/config"
	"github.com/guided-traffic/s3-bucket-manager/internal/s3manager"
)

// MockBucketManager is a testify mock for the BucketManager interface
type MockBucketManager struct {
	mock.Mock
}

func (m *MockBucketManager) CreateBucket(ctx context.Context, bucketName string) bool {
	args := m.Called(ctx, bucketName)
	return args.Bool(0)
}

func (m *MockBucketManager) ListBuckets(ctx context.Context) ([]s3manager.BucketDescriptor, error) {
	args := m.Called(ctx)
	if buckets := args.Get(0); buckets != nil {
		return buckets.([]s3manager.BucketDescriptor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBucketManager) DeleteBucket(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func newTestServer(manager BucketManager) *Server {
	cfg := &config.Config{
		BindAddress:     "127.0.0.1:0",
		LogLevel:        "debug",
		ShutdownTimeout: 30,
		S3:              config.S3Config{Region: "eu-west-1"},
	}
	return NewServer(cfg, manager, BuildInfo{Version: "test", Commit: "abc123", BuildTime: "now"})
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payload))
	return payload
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(&MockBucketManager{})

	w := doRequest(s, "GET", "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, decodeBody(t, w)["message"], "S3 Bucket Manager")
}

func TestHandleGenerateBucketName(t *testing.T) {
	s := newTestServer(&MockBucketManager{})

	w := doRequest(s, "GET", "/generate-unique-bucket-name", "")

	assert.Equal(t, http.StatusOK, w.Code)
	name, ok := decodeBody(t, w)["suggested_bucket_name"].(string)
	require.True(t, ok)
	assert.Regexp(t, bucketNamePattern, name)
}

func TestHandleCreateBucketSuccess(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	mockManager.On("CreateBucket", mock.Anything, "my-bucket").Return(true)

	w := doRequest(s, "POST", "/create-s3-bucket", `{"bucket_name":"my-bucket"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	message := decodeBody(t, w)["message"].(string)
	assert.Contains(t, message, "my-bucket")
	assert.Contains(t, message, "eu-west-1")
	mockManager.AssertExpectations(t)
}

func TestHandleCreateBucketFailure(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	mockManager.On("CreateBucket", mock.Anything, "my-bucket").Return(false)

	w := doRequest(s, "POST", "/create-s3-bucket", `{"bucket_name":"my-bucket"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "Failed to create bucket 'my-bucket'")
}

func TestHandleCreateBucketBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty bucket name", `{"bucket_name":""}`},
		{"missing bucket name", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := &MockBucketManager{}
			s := newTestServer(mockManager)

			w := doRequest(s, "POST", "/create-s3-bucket", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockManager.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleListBuckets(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	created := "2024-05-01T12:30:00Z"
	mockManager.On("ListBuckets", mock.Anything).Return([]s3manager.BucketDescriptor{
		{Name: "bucket-a", CreationDate: &created},
		{Name: "bucket-b"},
	}, nil)

	w := doRequest(s, "GET", "/list-s3-buckets", "")

	assert.Equal(t, http.StatusOK, w.Code)
	buckets := decodeBody(t, w)["buckets"].([]interface{})
	require.Len(t, buckets, 2)

	first := buckets[0].(map[string]interface{})
	assert.Equal(t, "bucket-a", first["name"])
	assert.Equal(t, created, first["creation_date"])

	second := buckets[1].(map[string]interface{})
	assert.Equal(t, "bucket-b", second["name"])
	assert.NotContains(t, second, "creation_date")
}

func TestHandleListBucketsError(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	mockManager.On("ListBuckets", mock.Anything).Return(nil, assert.AnError)

	w := doRequest(s, "GET", "/list-s3-buckets", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "unexpected error")
}

func TestHandleDeleteBucketSuccess(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	mockManager.On("DeleteBucket", mock.Anything, "my-bucket").Return(nil)

	w := doRequest(s, "DELETE", "/delete-s3-bucket/my-bucket", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "deleted successfully")
	mockManager.AssertExpectations(t)
}

func TestHandleDeleteBucketErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		kind       s3manager.DeleteErrorKind
		wantStatus int
		wantDetail string
	}{
		{"not found", s3manager.DeleteNotFound, http.StatusNotFound, "not found"},
		{"forbidden", s3manager.DeleteForbidden, http.StatusForbidden, "Access denied"},
		{"conflict", s3manager.DeleteConflict, http.StatusConflict, "not empty"},
		{"internal", s3manager.DeleteInternal, http.StatusInternalServerError, "AWS error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := &MockBucketManager{}
			s := newTestServer(mockManager)

			mockManager.On("DeleteBucket", mock.Anything, "my-bucket").Return(&s3manager.DeleteError{
				Kind:    tt.kind,
				Bucket:  "my-bucket",
				Code:    "SomeCode",
				Message: "some message",
			})

			w := doRequest(s, "DELETE", "/delete-s3-bucket/my-bucket", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, decodeBody(t, w)["detail"], tt.wantDetail)
		})
	}
}

func TestHandleDeleteBucketUnexpectedError(t *testing.T) {
	mockManager := &MockBucketManager{}
	s := newTestServer(mockManager)

	mockManager.On("DeleteBucket", mock.Anything, "my-bucket").Return(assert.AnError)

	w := doRequest(s, "DELETE", "/delete-s3-bucket/my-bucket", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealthAndVersion(t *testing.T) {
	s := newTestServer(&MockBucketManager{})

	w := doRequest(s, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])

	w = doRequest(s, "GET", "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, "test", payload["version"])
	assert.Equal(t, "abc123", payload["commit"])
}

func TestRequestIDEchoedOnResponse(t *testing.T) {
	s := newTestServer(&MockBucketManager{})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-Id"))

	// A generated ID is assigned when none is supplied
	w = doRequest(s, "GET", "/", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
