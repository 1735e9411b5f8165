package render

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
)

// PDF lays a document out on A4 pages: header, meta, lines, totals, rate
// breakdown, template body and footer.
func PDF(in Input) ([]byte, error) {
	data := PlaceholderData(in)
	tpl := in.Template

	header := "{{company_name}}"
	title := string(in.Document.Type)
	var body, footer string
	if tpl != nil {
		if strings.TrimSpace(tpl.Header) != "" {
			header = tpl.Header
		}
		if strings.TrimSpace(tpl.Name) != "" {
			title = tpl.Name
		}
		body = tpl.Content
		footer = tpl.Footer
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if logo, ext, ok := decodeDataURL(tpl); ok {
		m.AddRow(25,
			image.NewFromBytesCol(3, logo, ext, props.Rect{Percent: 80}),
			col.New(9),
		)
	}

	for _, l := range splitLines(RenderTemplateString(header, data)) {
		m.AddRow(6, text.NewCol(12, l, props.Text{Size: 10}))
	}

	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
			Top:   3,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Number: "+in.Document.Number, props.Text{Top: 0}),
			text.New("Date: "+in.Document.Date, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New(data["client_name"], props.Text{Top: 0, Align: align.Right, Style: fontstyle.Bold}),
			text.New(data["supplier_name"], props.Text{Top: 5, Align: align.Right}),
		),
	)

	head := props.Text{Style: fontstyle.Bold, Size: 9}
	headRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(5, "Description", head),
		text.NewCol(2, "Qty", headRight),
		text.NewCol(2, "PU HT", headRight),
		text.NewCol(1, "TVA", headRight),
		text.NewCol(2, "Total TTC", headRight),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, it := range in.Document.Items {
		m.AddRow(7,
			text.NewCol(5, it.Name, cell),
			text.NewCol(2, Quantity(it.Quantity), cellRight),
			text.NewCol(2, Money(it.UnitPriceExcludingTax), cellRight),
			text.NewCol(1, Percent(it.TaxRate), cellRight),
			text.NewCol(2, Money(it.TotalIncludingTax), cellRight),
		)
	}
	m.AddRow(2, line.NewCol(12))

	totals := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Total HT", in.Document.TotalHT, false},
		{"Total TVA", in.Document.TotalTVA, false},
		{"Total TTC", in.Document.TotalTTC, true},
	}
	for _, t := range totals {
		style := fontstyle.Normal
		if t.bold {
			style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, t.label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, Money(t.value), props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	if len(in.Document.TVABreakdown) > 1 {
		m.AddRow(8, text.NewCol(12, "TVA breakdown", props.Text{Size: 9, Style: fontstyle.Bold, Top: 2}))
		for _, key := range breakdownKeys(in.Document) {
			b := in.Document.TVABreakdown[key]
			m.AddRow(6,
				col.New(4),
				text.NewCol(2, key+"%", cellRight),
				text.NewCol(3, "base "+Money(b.Base), cellRight),
				text.NewCol(3, "TVA "+Money(b.Tax), cellRight),
			)
		}
	}

	for _, l := range splitLines(RenderTemplateString(body, data)) {
		m.AddRow(6, text.NewCol(12, l, props.Text{Size: 9, Top: 1}))
	}
	for _, l := range splitLines(RenderTemplateString(footer, data)) {
		m.AddRow(5, text.NewCol(12, l, props.Text{Size: 8, Top: 1}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// breakdownKeys orders rate keys numerically, highest rate first.
func breakdownKeys(doc documentdomain.Document) []string {
	keys := make([]string, 0, len(doc.TVABreakdown))
	for k := range doc.TVABreakdown {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a > b
	})
	return keys
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func decodeDataURL(tpl *catalogdomain.Template) ([]byte, extension.Type, bool) {
	if tpl == nil || tpl.CompanyInfo == nil {
		return nil, "", false
	}
	raw := strings.TrimSpace(tpl.CompanyInfo.LogoDataURL)
	meta, payload, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}

	var ext extension.Type
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:image/"), ";base64") {
	case "png":
		ext = extension.Png
	case "jpeg", "jpg":
		ext = extension.Jpg
	default:
		return nil, "", false
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(b) == 0 {
		return nil, "", false
	}
	return b, ext, true
}
