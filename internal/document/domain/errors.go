package domain

import "errors"

var (
	ErrNotFound    = errors.New("not_found")
	ErrInvalidType = errors.New("invalid_document_type")
	ErrInvalidDate = errors.New("invalid_date")
)
