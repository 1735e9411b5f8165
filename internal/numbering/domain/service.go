package domain

import "context"

type Service interface {
	// Generate returns the trimmed override untouched when it is non-blank,
	// otherwise the next number for (type, current year).
	Generate(ctx context.Context, documentType DocumentType, manualOverride string) (Number, error)
	// ResetYear zeroes the counter of (type, year). Year 0 means the current year.
	ResetYear(ctx context.Context, documentType DocumentType, year int) error
	Current(ctx context.Context, documentType DocumentType, year int) (int64, error)
	State(ctx context.Context) (State, error)
}
