package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/smallbiznis/docflow/internal/valuation/domain"
)

// Engine values line items. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts domain.Options
}

func NewEngine(opts domain.Options) (*Engine, error) {
	if opts.Convention == "" {
		opts.Convention = domain.RateConventionFraction
	}
	if opts.Convention != domain.RateConventionFraction && opts.Convention != domain.RateConventionPercent {
		return nil, domain.ErrInvalidConvention
	}
	if _, err := checkFraction(opts.DefaultRate); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// ComputeLineTotals returns the rounded totals of a single line.
func (e *Engine) ComputeLineTotals(item domain.LineItem) (domain.LineTotals, error) {
	line, _, _, err := e.valueLine(item, e.opts.Convention)
	return line, err
}

// ComputeDocumentTotals values every line and aggregates them with the
// sum-then-round policy: aggregates and buckets are sums of unrounded
// per-line figures, rounded once at the end. Rounded buckets are then
// adjusted by whole cents so they add up to the rounded aggregates, and the
// total including tax is the sum of the two rounded aggregates.
func (e *Engine) ComputeDocumentTotals(items []domain.LineItem) (domain.Valuation, error) {
	return e.compute(items, e.opts.Convention)
}

type bucketSum struct {
	base float64
	tax  float64
}

func (e *Engine) compute(items []domain.LineItem, convention domain.RateConvention) (domain.Valuation, error) {
	lines := make([]domain.LineTotals, 0, len(items))
	sums := make(map[string]*bucketSum)
	var sumBase, sumTax float64

	for i, item := range items {
		line, base, tax, err := e.valueLine(item, convention)
		if err != nil {
			return domain.Valuation{}, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, line)

		sumBase += base
		sumTax += tax

		key := RateKey(*line.TaxRate)
		bucket, ok := sums[key]
		if !ok {
			bucket = &bucketSum{}
			sums[key] = bucket
		}
		bucket.base += base
		bucket.tax += tax
	}

	totalBase := Round2(sumBase)
	totalTax := Round2(sumTax)

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	exactBase := make([]float64, len(keys))
	exactTax := make([]float64, len(keys))
	for i, key := range keys {
		exactBase[i] = sums[key].base
		exactTax[i] = sums[key].tax
	}
	bases := allocate(exactBase, totalBase)
	taxes := allocate(exactTax, totalTax)

	breakdown := make(map[string]domain.RateBucket, len(keys))
	for i, key := range keys {
		breakdown[key] = domain.RateBucket{Base: bases[i], Tax: taxes[i]}
	}

	return domain.Valuation{
		Lines: lines,
		Totals: domain.DocumentTotals{
			TotalExcludingTax: totalBase,
			TotalTax:          totalTax,
			TotalIncludingTax: Round2(totalBase + totalTax),
			BreakdownByRate:   breakdown,
		},
	}, nil
}

// allocate rounds each exact amount to cents and then moves whole cents so
// the results add up to total. Cents go to the amounts whose rounding strayed
// furthest in the needed direction; ties keep input order.
func allocate(exact []float64, total float64) []float64 {
	out := make([]float64, len(exact))
	if len(exact) == 0 {
		return out
	}

	cents := make([]int64, len(exact))
	var sum int64
	for i, v := range exact {
		cents[i] = toCents(Round2(v))
		sum += cents[i]
	}

	diff := toCents(total) - sum
	if diff != 0 {
		step := int64(1)
		if diff < 0 {
			step = -1
		}
		residual := func(i int) float64 {
			return (exact[i]*100 - float64(cents[i])) * float64(step)
		}
		order := make([]int, len(exact))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return residual(order[a]) > residual(order[b])
		})
		for k := 0; diff != 0; k++ {
			cents[order[k%len(order)]] += step
			diff -= step
		}
	}

	for i, c := range cents {
		out[i] = float64(c) / 100
	}
	return out
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func (e *Engine) valueLine(item domain.LineItem, convention domain.RateConvention) (domain.LineTotals, float64, float64, error) {
	if !finite(item.Quantity) {
		return domain.LineTotals{}, 0, 0, fmt.Errorf("%w: quantity is not finite", domain.ErrInvalidInput)
	}
	if !finite(item.UnitPriceExcludingTax) {
		return domain.LineTotals{}, 0, 0, fmt.Errorf("%w: unit price is not finite", domain.ErrInvalidInput)
	}

	rate, err := NormalizeRate(item.TaxRate, convention, e.opts.DefaultRate)
	if err != nil {
		return domain.LineTotals{}, 0, 0, err
	}

	base := item.Quantity * item.UnitPriceExcludingTax
	tax := base * rate

	normalized := item
	normalized.TaxRate = domain.Float(rate)

	lineBase := Round2(base)
	lineTax := Round2(tax)

	return domain.LineTotals{
		LineItem:          normalized,
		TotalExcludingTax: lineBase,
		TotalTax:          lineTax,
		TotalIncludingTax: Round2(lineBase + lineTax),
	}, base, tax, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
