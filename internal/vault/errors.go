package vault

import (
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"github.com/hashicorp/vault/api"
)

// Kind classifies a Vault failure into an actionable category.
type Kind string

const (
	// KindConfiguration means a required input was missing; fatal at startup.
	KindConfiguration Kind = "configuration"
	// KindAuthentication means the backend rejected the service token.
	KindAuthentication Kind = "authentication"
	// KindIncompleteCredentials means the secret exists but is malformed.
	KindIncompleteCredentials Kind = "incomplete_credentials"
	// KindPermissionDenied means the token lacks a capability on the path.
	KindPermissionDenied Kind = "permission_denied"
	// KindConnectionRefused means Vault is unreachable at the configured address.
	KindConnectionRefused Kind = "connection_refused"
	// KindUnauthorized means the token was not accepted for the request.
	KindUnauthorized Kind = "unauthorized"
	// KindPathNotFound means no secret exists at the configured mount/path.
	KindPathNotFound Kind = "path_not_found"
	// KindBackend covers every other Vault failure.
	KindBackend Kind = "backend"
)

// Error is a classified Vault failure with a remediation hint.
type Error struct {
	Kind Kind
	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vault %s error: %v (%s)", e.Kind, e.Err, e.Hint)
	}
	return fmt.Sprintf("vault %s error: %s", e.Kind, e.Hint)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify translates a raw Vault API error into an *Error, keyed on the
// response status code rather than the human-readable message.
func classify(err error, mount, path string) *Error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{
			Kind: KindConnectionRefused,
			Hint: "Vault connection refused; check that Vault is running and reachable at the configured address",
			Err:  err,
		}
	}

	if errors.Is(err, api.ErrSecretNotFound) {
		return &Error{
			Kind: KindPathNotFound,
			Hint: fmt.Sprintf("no secret found at '%s/%s'; check the mount and path", mount, path),
			Err:  err,
		}
	}

	var respErr *api.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusForbidden:
			return &Error{
				Kind: KindPermissionDenied,
				Hint: fmt.Sprintf("check that the token has the 'read' capability on '%s/data/%s'", mount, path),
				Err:  err,
			}
		case http.StatusUnauthorized:
			return &Error{
				Kind: KindUnauthorized,
				Hint: "Vault authentication failed; the token may be expired or invalid",
				Err:  err,
			}
		case http.StatusNotFound:
			return &Error{
				Kind: KindPathNotFound,
				Hint: fmt.Sprintf("Vault path '%s/data/%s' not found; check the mount and path", mount, path),
				Err:  err,
			}
		}
	}

	return &Error{
		Kind: KindBackend,
		Hint: "unexpected Vault error; see the wrapped error for details",
		Err:  err,
	}
}
