package domain

import (
	"time"

	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
	"github.com/smallbiznis/docflow/pkg/db/pagination"
)

const (
	StatusDraft = "draft"

	DateLayout = "2006-01-02"
)

// Document is the persisted snapshot of a commercial document. Line rates
// are always stored as fractions.
type Document struct {
	ID           string                                `json:"id"`
	Type         numberingdomain.DocumentType          `json:"type"`
	Number       string                                `json:"number"`
	Date         string                                `json:"date"`
	ClientID     string                                `json:"client_id,omitempty"`
	SupplierID   string                                `json:"fournisseur_id,omitempty"`
	Items        []valuationdomain.LineTotals          `json:"items"`
	TotalHT      float64                               `json:"total_ht"`
	TotalTVA     float64                               `json:"total_tva"`
	TotalTTC     float64                               `json:"total_ttc"`
	TVABreakdown map[string]valuationdomain.RateBucket `json:"tva_breakdown"`
	Status       string                                `json:"status,omitempty"`
	Notes        string                                `json:"notes,omitempty"`
	TemplateID   string                                `json:"template_id,omitempty"`
	CreatedAt    *time.Time                            `json:"created_at,omitempty"`
	UpdatedAt    *time.Time                            `json:"updated_at,omitempty"`
}

// DraftRequest carries an editable document. Number is either blank, a
// previously proposed number or a manual override; it is kept verbatim
// (trimmed) when non-blank.
type DraftRequest struct {
	Type           numberingdomain.DocumentType   `json:"type"`
	Number         string                         `json:"number"`
	Date           string                         `json:"date"`
	ClientID       string                         `json:"client_id"`
	SupplierID     string                         `json:"fournisseur_id"`
	Items          []valuationdomain.LineItem     `json:"items"`
	RateConvention valuationdomain.RateConvention `json:"rate_convention"`
	Status         string                         `json:"status"`
	Notes          string                         `json:"notes"`
	TemplateID     string                         `json:"template_id"`
}

type ListRequest struct {
	Type numberingdomain.DocumentType
	pagination.Pagination
}

type ListResponse struct {
	Documents []Document          `json:"documents"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}
