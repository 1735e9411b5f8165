package domain

import "errors"

var (
	ErrEmptyKey       = errors.New("empty_key")
	ErrNotConfigured  = errors.New("store_not_configured")
	ErrUpdateConflict = errors.New("update_conflict")
)
