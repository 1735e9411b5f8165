package render

import (
	"fmt"
	"regexp"
	"strings"

	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
)

const DefaultCompanyName = "My Company"

var placeholderRe = regexp.MustCompile(`\{\{(.+?)\}\}`)

// RenderTemplateString replaces {{key}} placeholders with data values.
// Unknown keys render as an empty string.
func RenderTemplateString(tpl string, data map[string]string) string {
	if tpl == "" {
		return ""
	}
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(m)[1])
		return data[key]
	})
}

// Input is everything needed to render one document.
type Input struct {
	Document documentdomain.Document
	Template *catalogdomain.Template
	Client   *catalogdomain.Client
	Supplier *catalogdomain.Supplier
}

// PlaceholderData builds the values available to template placeholders.
func PlaceholderData(in Input) map[string]string {
	doc := in.Document
	data := map[string]string{
		"document_number":  doc.Number,
		"document_type":    string(doc.Type),
		"date":             doc.Date,
		"total_ht":         Money(doc.TotalHT),
		"total_tva":        Money(doc.TotalTVA),
		"total_ttc":        Money(doc.TotalTTC),
		"client_name":      "",
		"supplier_name":    "",
		"items":            itemsSummary(doc),
		"notes":            doc.Notes,
		"terms_conditions": "",
		"company_name":     DefaultCompanyName,
	}
	if in.Client != nil {
		data["client_name"] = in.Client.Name
	}
	if in.Supplier != nil {
		data["supplier_name"] = in.Supplier.Name
	}
	if tpl := in.Template; tpl != nil {
		data["terms_conditions"] = tpl.TermsConditions
		if tpl.CompanyInfo != nil && strings.TrimSpace(tpl.CompanyInfo.Name) != "" {
			data["company_name"] = tpl.CompanyInfo.Name
		}
	}
	return data
}

func itemsSummary(doc documentdomain.Document) string {
	lines := make([]string, 0, len(doc.Items))
	for _, it := range doc.Items {
		lines = append(lines, fmt.Sprintf("%s× %s %s HT", Quantity(it.Quantity), it.Name, Money(it.UnitPriceExcludingTax)))
	}
	return strings.Join(lines, "\n")
}

func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func Quantity(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

// Percent renders a fraction as a whole percentage.
func Percent(rate *float64) string {
	if rate == nil {
		return ""
	}
	return fmt.Sprintf("%.0f%%", *rate*100)
}
