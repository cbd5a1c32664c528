package searchgate

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrAlreadyExists      = domain.ErrAlreadyExists
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrInvalidWeighting   = domain.ErrInvalidWeighting
	ErrFeatureUnavailable = domain.ErrFeatureUnavailable
)

// ErrSubmitInFlight is returned by Editor.Submit while a previous submit is running.
var ErrSubmitInFlight = errors.New("searchgate: submit already in progress")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("searchgate: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("searchgate: http %d %s: %s", e.Status, e.Code, e.Message)
}

// Is maps error codes onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == "not_found"
	case ErrAlreadyExists:
		return e.Code == "already_exists"
	case ErrInvalidWeighting:
		return e.Code == "validation_failed"
	case ErrInvalidRequest:
		return e.Code == "bad_request"
	case ErrFeatureUnavailable:
		return e.Code == "feature_unavailable"
	}
	return false
}
