package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid_input")
	ErrInvalidRate       = errors.New("invalid_tax_rate")
	ErrInvalidConvention = errors.New("invalid_rate_convention")
)
