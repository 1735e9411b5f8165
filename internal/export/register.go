package export

import (
	"bytes"
	"fmt"
	"sort"

	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	"github.com/xuri/excelize/v2"
)

const (
	sheetDocuments = "documents"
	sheetLines     = "lines"
	sheetRates     = "tva"
)

var (
	documentHeaders = []string{"Number", "Type", "Date", "Client", "Supplier", "Total HT", "Total TVA", "Total TTC", "Status"}
	lineHeaders     = []string{"Number", "Name", "Quantity", "Unit", "PU HT", "TVA", "Total HT", "Total TVA", "Total TTC"}
	rateHeaders     = []string{"Number", "Rate (%)", "Base", "TVA"}
)

// Parties resolves client and supplier display names by id.
type Parties struct {
	Clients   map[string]string
	Suppliers map[string]string
}

// BuildRegister writes documents as an XLSX workbook with one sheet for
// document totals, one for lines and one for the per-rate breakdown.
func BuildRegister(docs []documentdomain.Document, parties Parties) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetDocuments); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetLines, sheetRates} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	w := &sheetWriter{f: f}
	w.row(sheetDocuments, 1, headerValues(documentHeaders)...)
	w.row(sheetLines, 1, headerValues(lineHeaders)...)
	w.row(sheetRates, 1, headerValues(rateHeaders)...)

	lineRow, rateRow := 2, 2
	for i, doc := range docs {
		w.row(sheetDocuments, i+2,
			doc.Number,
			string(doc.Type),
			doc.Date,
			parties.Clients[doc.ClientID],
			parties.Suppliers[doc.SupplierID],
			doc.TotalHT,
			doc.TotalTVA,
			doc.TotalTTC,
			doc.Status,
		)

		for _, line := range doc.Items {
			var rate any
			if line.TaxRate != nil {
				rate = *line.TaxRate
			}
			w.row(sheetLines, lineRow,
				doc.Number,
				line.Name,
				line.Quantity,
				line.Unit,
				line.UnitPriceExcludingTax,
				rate,
				line.TotalExcludingTax,
				line.TotalTax,
				line.TotalIncludingTax,
			)
			lineRow++
		}

		keys := make([]string, 0, len(doc.TVABreakdown))
		for k := range doc.TVABreakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b := doc.TVABreakdown[k]
			w.row(sheetRates, rateRow, doc.Number, k, b.Base, b.Tax)
			rateRow++
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("write register: %w", w.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func headerValues(h []string) []any {
	out := make([]any, len(h))
	for i, v := range h {
		out[i] = v
	}
	return out
}
