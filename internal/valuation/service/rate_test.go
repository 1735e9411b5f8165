package service

import (
	"testing"

	"github.com/smallbiznis/docflow/internal/valuation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 1.005, want: 1.01},
		{in: -1.005, want: -1.01},
		{in: 0.125, want: 0.13},
		{in: -0.125, want: -0.13},
		{in: 1.234, want: 1.23},
		{in: 2.5, want: 2.5},
		{in: 5.99400000000001, want: 5.99},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Round2(tc.in), "Round2(%v)", tc.in)
	}
}

func TestRateConversions(t *testing.T) {
	assert.InDelta(t, 0.20, PercentToFraction(20), 1e-12)
	assert.InDelta(t, 20, FractionToPercent(0.20), 1e-12)
	assert.InDelta(t, 0.055, PercentToFraction(FractionToPercent(0.055)), 1e-12)
}

func TestNormalizeRate(t *testing.T) {
	rate, err := NormalizeRate(nil, domain.RateConventionPercent, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.2, rate)

	rate, err = NormalizeRate(domain.Float(10), domain.RateConventionPercent, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-12)

	rate, err = NormalizeRate(domain.Float(0.1), domain.RateConventionFraction, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.1, rate)

	rate, err = NormalizeRate(domain.Float(0), domain.RateConventionFraction, 0.2)
	require.NoError(t, err)
	assert.Zero(t, rate)

	_, err = NormalizeRate(domain.Float(10), domain.RateConventionFraction, 0.2)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = NormalizeRate(domain.Float(-5), domain.RateConventionPercent, 0.2)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = NormalizeRate(domain.Float(1), "", 0.2)
	assert.ErrorIs(t, err, domain.ErrInvalidConvention)
}

func TestParseConvention(t *testing.T) {
	conv, err := ParseConvention("", domain.RateConventionPercent)
	require.NoError(t, err)
	assert.Equal(t, domain.RateConventionPercent, conv)

	conv, err = ParseConvention(" FRACTION ", domain.RateConventionPercent)
	require.NoError(t, err)
	assert.Equal(t, domain.RateConventionFraction, conv)

	_, err = ParseConvention("auto", domain.RateConventionFraction)
	assert.ErrorIs(t, err, domain.ErrInvalidConvention)
}

func TestRateKey(t *testing.T) {
	assert.Equal(t, "20", RateKey(0.2))
	assert.Equal(t, "20", RateKey(0.1999999999))
	assert.Equal(t, "10", RateKey(0.1))
	assert.Equal(t, "0", RateKey(0))
	assert.Equal(t, "100", RateKey(1))
}
