package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticValuationConfigHolderNormalizes(t *testing.T) {
	holder, err := NewStaticValuationConfigHolder(ValuationConfig{DefaultRate: 0.1, RateConvention: " Percent "})
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 0.1, cfg.DefaultRate)
	assert.Equal(t, RateConventionPercent, cfg.RateConvention)
}

func TestStaticValuationConfigHolderRejectsInvalid(t *testing.T) {
	_, err := NewStaticValuationConfigHolder(ValuationConfig{DefaultRate: 20, RateConvention: RateConventionFraction})
	assert.Error(t, err)

	_, err = NewStaticValuationConfigHolder(ValuationConfig{DefaultRate: 0.2, RateConvention: "basis_points"})
	assert.Error(t, err)
}

func TestNormalizeBackend(t *testing.T) {
	assert.Equal(t, StoreBackendSQL, normalizeBackend("postgres"))
	assert.Equal(t, StoreBackendRedis, normalizeBackend(" REDIS "))
	assert.Equal(t, StoreBackendMemory, normalizeBackend("bogus"))
}
