package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/docflow/internal/kvstore/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return New(db, "r2r_v1"), db
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, db := setupStore(t)

	_, ok, err := s.Get(ctx, "documents")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "documents", []byte(`[{"id":"1"}]`)))
	got, ok, err := s.Get(ctx, "documents")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	var e Entry
	require.NoError(t, db.Take(&e).Error)
	assert.Equal(t, "r2r_v1:documents", e.EntryKey)

	require.NoError(t, s.Set(ctx, "documents", []byte(`[]`)))
	got, _, err = s.Get(ctx, "documents")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, "documents"))
	_, ok, err = s.Get(ctx, "documents")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateCreatesAndIncrements(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	type counters map[string]map[string]int
	inc := func(cur []byte, exists bool) ([]byte, error) {
		state := counters{}
		if exists {
			if err := json.Unmarshal(cur, &state); err != nil {
				return nil, err
			}
		}
		if state["FAC"] == nil {
			state["FAC"] = map[string]int{}
		}
		state["FAC"]["2024"]++
		return json.Marshal(state)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, "numbering", inc))
		}()
	}
	wg.Wait()

	got, ok, err := s.Get(ctx, "numbering")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"FAC":{"2024":20}}`, string(got))
}

func TestScalarValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	for _, value := range []string{`42`, `1.5`, `true`, `"FAC-2024/0001"`, `0`} {
		require.NoError(t, s.Set(ctx, "counter", []byte(value)))
		got, ok, err := s.Get(ctx, "counter")
		require.NoError(t, err, value)
		assert.True(t, ok, value)
		assert.JSONEq(t, value, string(got))
	}

	err := s.Update(ctx, "counter", func(cur []byte, exists bool) ([]byte, error) {
		require.True(t, exists)
		n, err := strconv.Atoi(string(cur))
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(n + 1)), nil
	})
	require.NoError(t, err)

	got, _, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
}

func TestUpdateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	boom := errors.New("boom")
	err := s.Update(ctx, "numbering", func([]byte, bool) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := s.Get(ctx, "numbering")
	require.NoError(t, err)
	assert.False(t, ok, "failed update must not leave a row behind")
}

func TestStoreWithoutDB(t *testing.T) {
	s := New(nil, "ns")
	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
