package domain

import "errors"

var (
	ErrInvalidDocumentType = errors.New("invalid_document_type")
	ErrInvalidYear         = errors.New("invalid_year")
	ErrInvalidTemplate     = errors.New("invalid_number_template")

	// ErrPersistenceFailure wraps store errors raised while committing a new
	// sequence. Nothing was issued; the call can be retried.
	ErrPersistenceFailure = errors.New("numbering_persistence_failure")
)

// IsRetryable reports whether err is a transient numbering failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceFailure)
}
