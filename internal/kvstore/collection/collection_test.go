package collection

import (
	"context"
	"strconv"
	"testing"

	"github.com/smallbiznis/docflow/internal/kvstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newClients(t *testing.T) *Collection[client] {
	t.Helper()
	seq := 0
	return New(memory.New("test"), "clients", Identity[client]{
		ID:     func(c client) string { return c.ID },
		WithID: func(c client, id string) client { c.ID = id; return c },
	}, func() string {
		seq++
		return "id-" + strconv.Itoa(seq)
	})
}

func TestAddAssignsIDAndAppends(t *testing.T) {
	ctx := context.Background()
	c := newClients(t)

	a, err := c.Add(ctx, client{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", a.ID)

	b, err := c.Add(ctx, client{ID: "keep", Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, "keep", b.ID)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, "B", list[1].Name)
}

func TestPrependPutsNewestFirst(t *testing.T) {
	ctx := context.Background()
	c := newClients(t)

	_, err := c.Prepend(ctx, client{Name: "old"})
	require.NoError(t, err)
	_, err = c.Prepend(ctx, client{Name: "new"})
	require.NoError(t, err)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", list[0].Name)
}

func TestUpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	c := newClients(t)
	a, err := c.Add(ctx, client{Name: "A"})
	require.NoError(t, err)

	updated, err := c.Update(ctx, a.ID, func(cl client) client {
		cl.Name = "A2"
		cl.ID = "hijack"
		return cl
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID)

	got, err := c.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)

	_, err = c.Update(ctx, "missing", func(cl client) client { return cl })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	c := newClients(t)
	a, _ := c.Add(ctx, client{Name: "A"})
	b, _ := c.Add(ctx, client{Name: "B"})

	require.NoError(t, c.Delete(ctx, a.ID))
	assert.ErrorIs(t, c.Delete(ctx, a.ID), ErrNotFound)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	_, err = c.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
