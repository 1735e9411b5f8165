package domain

// RateConvention declares how a caller expresses tax rates.
// Internally every rate is a fraction of 1.
type RateConvention string

const (
	RateConventionFraction RateConvention = "fraction" // 0.20 means 20%
	RateConventionPercent  RateConvention = "percent"  // 20 means 20%
)

// LineItem is a single priced line of a commercial document.
// TaxRate is nil when the line should use the configured default rate.
type LineItem struct {
	ItemID                string   `json:"item_id,omitempty"`
	Name                  string   `json:"name"`
	Description           string   `json:"description,omitempty"`
	Quantity              float64  `json:"quantity"`
	Unit                  string   `json:"unit,omitempty"`
	UnitPriceExcludingTax float64  `json:"price_ht"`
	TaxRate               *float64 `json:"tva"`
}

// LineTotals is a LineItem with its rounded money amounts.
// After valuation TaxRate always holds the normalized fraction.
type LineTotals struct {
	LineItem
	TotalExcludingTax float64 `json:"total_ht"`
	TotalTax          float64 `json:"total_tva"`
	TotalIncludingTax float64 `json:"total_ttc"`
}

// RateBucket accumulates base and tax for one breakdown key.
type RateBucket struct {
	Base float64 `json:"base"`
	Tax  float64 `json:"tva"`
}

// DocumentTotals summarizes a document. Aggregates are computed by summing
// unrounded per-line figures and rounding once (sum-then-round).
type DocumentTotals struct {
	TotalExcludingTax float64               `json:"total_ht"`
	TotalTax          float64               `json:"total_tva"`
	TotalIncludingTax float64               `json:"total_ttc"`
	BreakdownByRate   map[string]RateBucket `json:"tva_breakdown"`
}

// Valuation is the result of valuing a list of lines.
type Valuation struct {
	Lines  []LineTotals   `json:"lines"`
	Totals DocumentTotals `json:"totals"`
}

// Options fixes the defaults used while normalizing rates.
type Options struct {
	DefaultRate float64
	Convention  RateConvention
}

func Float(v float64) *float64 { return &v }
