package vault

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
)

func TestClassifyByStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind Kind
	}{
		{"forbidden", 403, KindPermissionDenied},
		{"unauthorized", 401, KindUnauthorized},
		{"not found", 404, KindPathNotFound},
		{"server error", 500, KindBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			respErr := &api.ResponseError{StatusCode: tt.status}
			err := classify(fmt.Errorf("read failed: %w", respErr), "secrets", "aws/credentials")
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.NotEmpty(t, err.Hint)
		})
	}
}

func TestClassifyConnectionRefused(t *testing.T) {
	err := classify(fmt.Errorf("dial tcp 127.0.0.1:8200: %w", syscall.ECONNREFUSED), "secrets", "aws/credentials")
	assert.Equal(t, KindConnectionRefused, err.Kind)
}

func TestClassifySecretNotFound(t *testing.T) {
	err := classify(fmt.Errorf("reading secret: %w", api.ErrSecretNotFound), "secrets", "aws/credentials")
	assert.Equal(t, KindPathNotFound, err.Kind)
	assert.Contains(t, err.Hint, "secrets/aws/credentials")
}

func TestClassifyPermissionDeniedHintNamesPath(t *testing.T) {
	err := classify(&api.ResponseError{StatusCode: 403}, "secrets", "aws/credentials")
	assert.Contains(t, err.Hint, "'read' capability")
	assert.Contains(t, err.Hint, "secrets/data/aws/credentials")
}

func TestClassifyUnknownError(t *testing.T) {
	err := classify(assert.AnError, "secrets", "aws/credentials")
	assert.Equal(t, KindBackend, err.Kind)
	assert.ErrorIs(t, err, assert.AnError)
}
