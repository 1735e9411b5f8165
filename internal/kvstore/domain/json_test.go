package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/docflow/internal/kvstore/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONFallsBackOnAbsentAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := memory.New("test")

	got, err := domain.GetJSON(ctx, store, "counters", map[string]int{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 1}, got)

	require.NoError(t, store.Set(ctx, "counters", []byte("{not json")))
	got, err = domain.GetJSON(ctx, store, "counters", map[string]int{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetThenGetJSON(t *testing.T) {
	ctx := context.Background()
	store := memory.New("test")

	require.NoError(t, domain.SetJSON(ctx, store, "counters", map[string]int{"FAC-2024": 3}))
	got, err := domain.GetJSON(ctx, store, "counters", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, 3, got["FAC-2024"])
}

func TestUpdateJSONReportsMalformed(t *testing.T) {
	ctx := context.Background()
	store := memory.New("test")
	require.NoError(t, store.Set(ctx, "counters", []byte("[1,2")))

	var sawMalformed bool
	err := domain.UpdateJSON(ctx, store, "counters", func() map[string]int { return map[string]int{} },
		func(cur map[string]int, malformed bool) (map[string]int, error) {
			sawMalformed = malformed
			cur["DEV-2024"] = 1
			return cur, nil
		})
	require.NoError(t, err)
	assert.True(t, sawMalformed)

	got, err := domain.GetJSON(ctx, store, "counters", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"DEV-2024": 1}, got)
}

func TestUpdateJSONErrorLeavesValue(t *testing.T) {
	ctx := context.Background()
	store := memory.New("test")
	require.NoError(t, domain.SetJSON(ctx, store, "counters", map[string]int{"BL-2024": 7}))

	boom := errors.New("boom")
	err := domain.UpdateJSON(ctx, store, "counters", func() map[string]int { return map[string]int{} },
		func(cur map[string]int, _ bool) (map[string]int, error) {
			cur["BL-2024"] = 8
			return nil, boom
		})
	assert.ErrorIs(t, err, boom)

	got, err := domain.GetJSON(ctx, store, "counters", map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, 7, got["BL-2024"])
}

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "r2r_v1:numbering", domain.NamespacedKey("r2r_v1", "numbering"))
	assert.Equal(t, "numbering", domain.NamespacedKey(" ", "numbering"))
}
