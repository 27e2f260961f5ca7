package s3manager

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

// DeleteErrorKind categorizes a failed bucket deletion.
type DeleteErrorKind string

const (
	// DeleteNotFound means the bucket does not exist.
	DeleteNotFound DeleteErrorKind = "not_found"
	// DeleteForbidden means the credentials cannot delete the bucket.
	DeleteForbidden DeleteErrorKind = "forbidden"
	// DeleteConflict means the bucket still held content after the empty
	// phase. This is a verification failure and is not retried.
	DeleteConflict DeleteErrorKind = "conflict"
	// DeleteInternal covers every other provider or transport failure.
	DeleteInternal DeleteErrorKind = "internal"
)

// DeleteError is a classified bucket-deletion failure. Code and Message carry
// the provider's machine-readable error code and text when available.
type DeleteError struct {
	Kind    DeleteErrorKind
	Bucket  string
	Code    string
	Message string
	Err     error
}

func (e *DeleteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("delete bucket '%s' failed (%s): %s: %s", e.Bucket, e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("delete bucket '%s' failed (%s): %v", e.Bucket, e.Kind, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to the HTTP status the API surfaces.
func (e *DeleteError) HTTPStatus() int {
	switch e.Kind {
	case DeleteNotFound:
		return http.StatusNotFound
	case DeleteForbidden:
		return http.StatusForbidden
	case DeleteConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// classifyDeleteError maps a provider error to a *DeleteError, keyed on the
// provider's error code rather than the message text.
func classifyDeleteError(bucket string, err error) *DeleteError {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		deleteErr := &DeleteError{
			Bucket:  bucket,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Err:     err,
		}
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			deleteErr.Kind = DeleteNotFound
		case "AccessDenied":
			deleteErr.Kind = DeleteForbidden
		case "BucketNotEmpty":
			deleteErr.Kind = DeleteConflict
		default:
			deleteErr.Kind = DeleteInternal
		}
		return deleteErr
	}

	return &DeleteError{
		Kind:   DeleteInternal,
		Bucket: bucket,
		Err:    err,
	}
}
