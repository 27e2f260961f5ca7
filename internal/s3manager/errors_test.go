package s3manager

import (
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDeleteErrorCarriesProviderCode(t *testing.T) {
	err := classifyDeleteError("my-bucket", &smithy.GenericAPIError{
		Code:    "BucketNotEmpty",
		Message: "The bucket you tried to delete is not empty",
	})

	assert.Equal(t, DeleteConflict, err.Kind)
	assert.Equal(t, "my-bucket", err.Bucket)
	assert.Equal(t, "BucketNotEmpty", err.Code)
	assert.Contains(t, err.Error(), "BucketNotEmpty")
}

func TestClassifyDeleteErrorWrappedAPIError(t *testing.T) {
	// Error codes must be found through wrapping, not by matching on the
	// rendered message
	wrapped := fmt.Errorf("operation error S3: DeleteBucket: %w",
		&smithy.GenericAPIError{Code: "NoSuchBucket", Message: "not found"})

	err := classifyDeleteError("my-bucket", wrapped)
	assert.Equal(t, DeleteNotFound, err.Kind)
}

func TestClassifyDeleteErrorNonAPIError(t *testing.T) {
	err := classifyDeleteError("my-bucket", assert.AnError)
	assert.Equal(t, DeleteInternal, err.Kind)
	assert.Empty(t, err.Code)
	assert.Equal(t, 500, err.HTTPStatus())
}
