package domain

import "time"

// TemplateTypeAll marks a template usable for every document type.
const TemplateTypeAll = "all"

type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PriceHT       float64  `json:"price_ht"`
	TaxRate       *float64 `json:"tva,omitempty"`
	Category      string   `json:"category,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	SupplierID    string   `json:"supplier_id,omitempty"`
	StockQuantity *float64 `json:"stock_quantity,omitempty"`
}

type CompanyInfo struct {
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LogoDataURL string `json:"logoDataUrl,omitempty"`
}

type Template struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Name            string         `json:"name"`
	Content         string         `json:"content"`
	Styles          map[string]any `json:"styles,omitempty"`
	Header          string         `json:"header,omitempty"`
	Footer          string         `json:"footer,omitempty"`
	IsDefault       bool           `json:"is_default,omitempty"`
	CompanyInfo     *CompanyInfo   `json:"company_info,omitempty"`
	TermsConditions string         `json:"terms_conditions,omitempty"`
	Version         int            `json:"version,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

// Matches reports whether the template applies to documentType.
func (t Template) Matches(documentType string) bool {
	return t.Type == documentType || t.Type == TemplateTypeAll
}

type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Type    string `json:"type,omitempty"`
}

type Supplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	PaymentTerms  string `json:"payment_terms,omitempty"`
	DeliveryTerms string `json:"delivery_terms,omitempty"`
	BankInfo      string `json:"bank_info,omitempty"`
	Type          string `json:"type,omitempty"`
}
