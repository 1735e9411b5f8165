package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/smallbiznis/docflow/internal/valuation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFractionEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(domain.Options{DefaultRate: 0.20, Convention: domain.RateConventionFraction})
	require.NoError(t, err)
	return engine
}

func TestComputeDocumentTotals_MixedRates(t *testing.T) {
	engine := newFractionEngine(t)

	result, err := engine.ComputeDocumentTotals([]domain.LineItem{
		{Name: "Consulting", Quantity: 2, UnitPriceExcludingTax: 100, TaxRate: domain.Float(0.20)},
		{Name: "Travel", Quantity: 1, UnitPriceExcludingTax: 50, TaxRate: domain.Float(0.20)},
		{Name: "Books", Quantity: 1, UnitPriceExcludingTax: 200, TaxRate: domain.Float(0.10)},
	})
	require.NoError(t, err)

	assert.InDelta(t, 450.00, result.Totals.TotalExcludingTax, 1e-9)
	assert.InDelta(t, 70.00, result.Totals.TotalTax, 1e-9)
	assert.InDelta(t, 520.00, result.Totals.TotalIncludingTax, 1e-9)

	require.Len(t, result.Totals.BreakdownByRate, 2)
	assert.InDelta(t, 250.00, result.Totals.BreakdownByRate["20"].Base, 1e-9)
	assert.InDelta(t, 50.00, result.Totals.BreakdownByRate["20"].Tax, 1e-9)
	assert.InDelta(t, 200.00, result.Totals.BreakdownByRate["10"].Base, 1e-9)
	assert.InDelta(t, 20.00, result.Totals.BreakdownByRate["10"].Tax, 1e-9)

	require.Len(t, result.Lines, 3)
	assert.InDelta(t, 200.00, result.Lines[0].TotalExcludingTax, 1e-9)
	assert.InDelta(t, 40.00, result.Lines[0].TotalTax, 1e-9)
	assert.InDelta(t, 240.00, result.Lines[0].TotalIncludingTax, 1e-9)
}

func TestComputeDocumentTotals_Empty(t *testing.T) {
	engine := newFractionEngine(t)

	result, err := engine.ComputeDocumentTotals(nil)
	require.NoError(t, err)

	assert.Zero(t, result.Totals.TotalExcludingTax)
	assert.Zero(t, result.Totals.TotalTax)
	assert.Zero(t, result.Totals.TotalIncludingTax)
	assert.NotNil(t, result.Totals.BreakdownByRate)
	assert.Empty(t, result.Totals.BreakdownByRate)
	assert.Empty(t, result.Lines)
}

func TestComputeLineTotals_DefaultRate(t *testing.T) {
	engine := newFractionEngine(t)

	line, err := engine.ComputeLineTotals(domain.LineItem{Name: "Widget", Quantity: 3, UnitPriceExcludingTax: 9.99})
	require.NoError(t, err)

	require.NotNil(t, line.TaxRate)
	assert.Equal(t, 0.20, *line.TaxRate)
	assert.InDelta(t, 29.97, line.TotalExcludingTax, 1e-9)
	assert.InDelta(t, 5.99, line.TotalTax, 1e-9)
	assert.InDelta(t, 35.96, line.TotalIncludingTax, 1e-9)
}

func TestComputeLineTotals_NegativeLinesAreAccepted(t *testing.T) {
	engine := newFractionEngine(t)

	line, err := engine.ComputeLineTotals(domain.LineItem{Name: "Return", Quantity: -1, UnitPriceExcludingTax: 50, TaxRate: domain.Float(0.2)})
	require.NoError(t, err)

	assert.InDelta(t, -50.00, line.TotalExcludingTax, 1e-9)
	assert.InDelta(t, -10.00, line.TotalTax, 1e-9)
	assert.InDelta(t, -60.00, line.TotalIncludingTax, 1e-9)
}

func TestComputeLineTotals_RejectsNonFiniteInput(t *testing.T) {
	engine := newFractionEngine(t)

	cases := []domain.LineItem{
		{Name: "nan qty", Quantity: math.NaN(), UnitPriceExcludingTax: 1},
		{Name: "inf price", Quantity: 1, UnitPriceExcludingTax: math.Inf(1)},
		{Name: "nan rate", Quantity: 1, UnitPriceExcludingTax: 1, TaxRate: domain.Float(math.NaN())},
	}
	for _, item := range cases {
		t.Run(item.Name, func(t *testing.T) {
			_, err := engine.ComputeLineTotals(item)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestComputeDocumentTotals_RejectsNonFiniteLine(t *testing.T) {
	engine := newFractionEngine(t)

	_, err := engine.ComputeDocumentTotals([]domain.LineItem{
		{Name: "ok", Quantity: 1, UnitPriceExcludingTax: 10},
		{Name: "bad", Quantity: math.NaN(), UnitPriceExcludingTax: 10},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComputeDocumentTotals_PercentConvention(t *testing.T) {
	engine, err := NewEngine(domain.Options{DefaultRate: 0.20, Convention: domain.RateConventionPercent})
	require.NoError(t, err)

	result, err := engine.ComputeDocumentTotals([]domain.LineItem{
		{Name: "A", Quantity: 1, UnitPriceExcludingTax: 100, TaxRate: domain.Float(20)},
		{Name: "B", Quantity: 1, UnitPriceExcludingTax: 100, TaxRate: domain.Float(5.5)},
		{Name: "C", Quantity: 1, UnitPriceExcludingTax: 100},
	})
	require.NoError(t, err)

	assert.InDelta(t, 45.50, result.Totals.TotalTax, 1e-9)
	assert.Equal(t, 0.20, *result.Lines[0].TaxRate)
	assert.InDelta(t, 0.055, *result.Lines[1].TaxRate, 1e-12)
	assert.Equal(t, 0.20, *result.Lines[2].TaxRate)
}

func TestComputeDocumentTotals_RateOutOfRangeForConvention(t *testing.T) {
	engine := newFractionEngine(t)

	_, err := engine.ComputeDocumentTotals([]domain.LineItem{
		{Name: "percent sent as fraction", Quantity: 1, UnitPriceExcludingTax: 100, TaxRate: domain.Float(20)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestComputeDocumentTotals_NearlyEqualRatesShareBucket(t *testing.T) {
	engine := newFractionEngine(t)

	result, err := engine.ComputeDocumentTotals([]domain.LineItem{
		{Name: "A", Quantity: 1, UnitPriceExcludingTax: 10, TaxRate: domain.Float(0.2)},
		{Name: "B", Quantity: 1, UnitPriceExcludingTax: 10, TaxRate: domain.Float(0.1999999999)},
	})
	require.NoError(t, err)

	require.Len(t, result.Totals.BreakdownByRate, 1)
	assert.InDelta(t, 20.00, result.Totals.BreakdownByRate["20"].Base, 1e-9)
}

func TestComputeDocumentTotals_SumThenRound(t *testing.T) {
	engine := newFractionEngine(t)

	// Each line's tax is 0.002 and rounds to 0.00, but the document
	// accumulates the unrounded values: 10 * 0.002 = 0.02.
	items := make([]domain.LineItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, domain.LineItem{Name: "tiny", Quantity: 1, UnitPriceExcludingTax: 0.01, TaxRate: domain.Float(0.2)})
	}

	result, err := engine.ComputeDocumentTotals(items)
	require.NoError(t, err)

	assert.Zero(t, result.Lines[0].TotalTax)
	assert.InDelta(t, 0.02, result.Totals.TotalTax, 1e-9)
	assert.InDelta(t, 0.10, result.Totals.TotalExcludingTax, 1e-9)
	assert.InDelta(t, 0.12, result.Totals.TotalIncludingTax, 1e-9)
}

func TestComputeDocumentTotals_Idempotent(t *testing.T) {
	engine := newFractionEngine(t)
	items := []domain.LineItem{
		{Name: "A", Quantity: 3, UnitPriceExcludingTax: 19.99, TaxRate: domain.Float(0.2)},
		{Name: "B", Quantity: 7, UnitPriceExcludingTax: 0.333, TaxRate: domain.Float(0.055)},
	}

	first, err := engine.ComputeDocumentTotals(items)
	require.NoError(t, err)
	second, err := engine.ComputeDocumentTotals(items)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NotNil(t, items[0].TaxRate)
	assert.Equal(t, 0.2, *items[0].TaxRate, "input must not be mutated")
}

func TestValuationProperties(t *testing.T) {
	engine := newFractionEngine(t)
	rng := rand.New(rand.NewSource(42))
	rates := []float64{0, 0.021, 0.055, 0.10, 0.20}

	for round := 0; round < 200; round++ {
		n := rng.Intn(25)
		items := make([]domain.LineItem, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, domain.LineItem{
				Name:                  "line",
				Quantity:              float64(rng.Intn(50) + 1),
				UnitPriceExcludingTax: math.Round(rng.Float64()*100000) / 100,
				TaxRate:               domain.Float(rates[rng.Intn(len(rates))]),
			})
		}

		result, err := engine.ComputeDocumentTotals(items)
		require.NoError(t, err)

		for _, line := range result.Lines {
			assert.InDelta(t, Round2(line.TotalExcludingTax+line.TotalTax), line.TotalIncludingTax, 1e-9)
		}

		var baseSum, taxSum float64
		for _, bucket := range result.Totals.BreakdownByRate {
			baseSum += bucket.Base
			taxSum += bucket.Tax
		}
		assert.InDelta(t, result.Totals.TotalExcludingTax, baseSum, 1e-6)
		assert.InDelta(t, result.Totals.TotalTax, taxSum, 1e-6)
		assert.InDelta(t, Round2(result.Totals.TotalExcludingTax+result.Totals.TotalTax), result.Totals.TotalIncludingTax, 1e-9)
	}
}

func TestComputeDocumentTotals_BreakdownReconcilesWithTotals(t *testing.T) {
	engine := newFractionEngine(t)

	// Every bucket base is 0.005 and rounds up on its own, while the
	// aggregate 0.025 rounds to 0.03.
	items := make([]domain.LineItem, 0, 5)
	for _, rate := range []float64{0, 0.021, 0.055, 0.10, 0.20} {
		items = append(items, domain.LineItem{Name: "cent", Quantity: 1, UnitPriceExcludingTax: 0.005, TaxRate: domain.Float(rate)})
	}

	result, err := engine.ComputeDocumentTotals(items)
	require.NoError(t, err)
	require.Len(t, result.Totals.BreakdownByRate, 5)

	assert.InDelta(t, 0.03, result.Totals.TotalExcludingTax, 1e-9)

	var baseSum float64
	for key, bucket := range result.Totals.BreakdownByRate {
		assert.Contains(t, []float64{0, 0.01}, bucket.Base, key)
		baseSum += bucket.Base
	}
	assert.InDelta(t, result.Totals.TotalExcludingTax, baseSum, 1e-9)
	assert.Zero(t, result.Totals.BreakdownByRate["0"].Base)
	assert.Zero(t, result.Totals.BreakdownByRate["10"].Base)
}

func TestAllocate(t *testing.T) {
	assert.Empty(t, allocate(nil, 0))
	assert.Equal(t, []float64{0.34, 0.33, 0.33}, allocate([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, 1))
	assert.Equal(t, []float64{0.66, 0.67, 0.67}, allocate([]float64{2.0 / 3, 2.0 / 3, 2.0 / 3}, 2))
	assert.Equal(t, []float64{250, 200}, allocate([]float64{250, 200}, 450))
	assert.Equal(t, []float64{-0.34, -0.33, -0.33}, allocate([]float64{-1.0 / 3, -1.0 / 3, -1.0 / 3}, -1))
}

func TestComputeLineTotals_IncludingTaxAddsRoundedFigures(t *testing.T) {
	engine := newFractionEngine(t)

	// base 1.004 -> 1.00, tax 0.502 -> 0.50; rounding 1.506 directly would give 1.51.
	line, err := engine.ComputeLineTotals(domain.LineItem{Name: "odd", Quantity: 1, UnitPriceExcludingTax: 1.004, TaxRate: domain.Float(0.5)})
	require.NoError(t, err)

	assert.InDelta(t, 1.00, line.TotalExcludingTax, 1e-9)
	assert.InDelta(t, 0.50, line.TotalTax, 1e-9)
	assert.InDelta(t, 1.50, line.TotalIncludingTax, 1e-9)
}

func TestNewEngine_ValidatesOptions(t *testing.T) {
	_, err := NewEngine(domain.Options{DefaultRate: 20, Convention: domain.RateConventionFraction})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = NewEngine(domain.Options{DefaultRate: 0.2, Convention: "bps"})
	assert.ErrorIs(t, err, domain.ErrInvalidConvention)
}
