package store

import (
	"errors"
	"net/http"

	"github.com/sf1tzp/symbology-sub000/orm"
)

// ServiceError represents public-facing errors from the content store,
// carrying the HTTP status the transport layer should answer with.
type ServiceError struct {
	Status  int
	Message string
	Inner   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Inner
}

// wrapServiceError converts internal errors to user-friendly service errors.
// Fingerprint conflicts never reach this point; Create resolves them to the
// existing artifact. Any other conflict is a genuine client error.
func wrapServiceError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var notFoundErr *orm.NotFoundError
	if errors.As(err, &notFoundErr) {
		return &ServiceError{
			Status:  http.StatusNotFound,
			Message: "Not found for " + operation,
			Inner:   err,
		}
	}

	var badInputErr *orm.BadInputError
	if errors.As(err, &badInputErr) {
		return &ServiceError{
			Status:  http.StatusBadRequest,
			Message: badInputErr.Error(),
			Inner:   err,
		}
	}

	var conflictErr *orm.ConflictError
	if errors.As(err, &conflictErr) {
		return &ServiceError{
			Status:  http.StatusConflict,
			Message: "Already exists for " + operation,
			Inner:   err,
		}
	}

	return &ServiceError{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error during " + operation,
		Inner:   err,
	}
}

// StatusOf extracts the HTTP status from a service error, defaulting to 500.
func StatusOf(err error) int {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Status
	}

	return http.StatusInternalServerError
}
