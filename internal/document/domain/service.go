package domain

import (
	"context"

	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
)

type Service interface {
	// ProposeNumber issues the next number for documentType. Issued numbers
	// are consumed even when the document is never saved.
	ProposeNumber(ctx context.Context, documentType numberingdomain.DocumentType) (numberingdomain.Number, error)
	// Preview values a draft without numbering or persisting it.
	Preview(ctx context.Context, req DraftRequest) (Document, error)
	// Save values the draft, numbers it when Number is blank and stores it
	// at the head of the register.
	Save(ctx context.Context, req DraftRequest) (Document, error)
	// Update re-values a stored document. Its number only changes when the
	// request carries a non-blank one; no new number is ever issued.
	Update(ctx context.Context, id string, req DraftRequest) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// All returns every stored document, optionally filtered by type, newest first.
	All(ctx context.Context, documentType numberingdomain.DocumentType) ([]Document, error)
	// Delete removes a document. Numbering state is never touched.
	Delete(ctx context.Context, id string) error
}
