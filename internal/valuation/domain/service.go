package domain

import "context"

// Service values document lines using the current configuration.
type Service interface {
	ComputeLineTotals(ctx context.Context, item LineItem, convention RateConvention) (LineTotals, error)
	ComputeDocumentTotals(ctx context.Context, items []LineItem, convention RateConvention) (Valuation, error)
}
