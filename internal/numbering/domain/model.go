package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// DocumentType names a kind of commercial document.
type DocumentType string

const (
	DocumentTypeQuote         DocumentType = "devis"
	DocumentTypePurchaseOrder DocumentType = "bon-de-commande"
	DocumentTypeInvoice       DocumentType = "facture"
	DocumentTypeDeliveryNote  DocumentType = "bon-de-livraison"
)

// Type codes are part of every issued number. Do not change them once used.
const (
	CodeQuote         = "DEV"
	CodePurchaseOrder = "BC"
	CodeInvoice       = "FAC"
	CodeDeliveryNote  = "BL"
)

const minCodeLength = 2

var typeCodes = map[string]string{
	string(DocumentTypeQuote):         CodeQuote,
	string(DocumentTypePurchaseOrder): CodePurchaseOrder,
	string(DocumentTypeInvoice):       CodeInvoice,
	string(DocumentTypeDeliveryNote):  CodeDeliveryNote,

	"quote":          CodeQuote,
	"purchase-order": CodePurchaseOrder,
	"invoice":        CodeInvoice,
	"delivery-note":  CodeDeliveryNote,
}

// CodeFor resolves the numbering code of a document type. Unknown types get
// the first three letters or digits of their name, upper-cased and padded
// with X to at least two characters, and known is false.
func CodeFor(documentType DocumentType) (code string, known bool, err error) {
	normalized := strings.ToLower(strings.TrimSpace(string(documentType)))
	if code, ok := typeCodes[normalized]; ok {
		return code, true, nil
	}

	var b strings.Builder
	for _, r := range normalized {
		if b.Len() >= 3 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		return "", false, ErrInvalidDocumentType
	}
	for b.Len() < minCodeLength {
		b.WriteByte('X')
	}
	return b.String(), false, nil
}

// State maps code -> year -> last issued sequence. It is the persisted shape.
type State map[string]map[string]int64

// Sequence returns the last issued sequence for (code, year), 0 when absent.
func (s State) Sequence(code string, year int) int64 {
	years, ok := s[code]
	if !ok {
		return 0
	}
	return years[YearKey(year)]
}

// Set records seq for (code, year), creating the inner map when needed.
func (s State) Set(code string, year int, seq int64) {
	years, ok := s[code]
	if !ok || years == nil {
		years = make(map[string]int64)
		s[code] = years
	}
	years[YearKey(year)] = seq
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for code, years := range s {
		inner := make(map[string]int64, len(years))
		for y, seq := range years {
			inner[y] = seq
		}
		out[code] = inner
	}
	return out
}

func YearKey(year int) string {
	return strconv.Itoa(year)
}

// Number is the result of a generation.
type Number struct {
	Value    string `json:"number"`
	Code     string `json:"code,omitempty"`
	Year     int    `json:"year,omitempty"`
	Sequence int64  `json:"sequence,omitempty"`
	Manual   bool   `json:"manual"`
}
