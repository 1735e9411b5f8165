package collection

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/docflow/internal/kvstore/domain"
)

var ErrNotFound = errors.New("not_found")

// Identity tells a Collection how to read and assign element ids.
type Identity[T any] struct {
	ID     func(T) string
	WithID func(T, string) T
}

// Collection stores a JSON array of T under a single key. Every mutation is
// one atomic store Update.
type Collection[T any] struct {
	store    domain.Store
	key      string
	identity Identity[T]
	newID    func() string
}

func New[T any](store domain.Store, key string, identity Identity[T], newID func() string) *Collection[T] {
	return &Collection[T]{
		store:    store,
		key:      key,
		identity: identity,
		newID:    newID,
	}
}

// List returns every element in stored order. Malformed data reads as empty.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return domain.GetJSON(ctx, c.store, c.key, []T{})
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if c.identity.ID(item) == id {
			return item, nil
		}
	}
	return zero, ErrNotFound
}

// Add appends item, assigning an id when it has none.
func (c *Collection[T]) Add(ctx context.Context, item T) (T, error) {
	return c.insert(ctx, item, false)
}

// Prepend inserts item at the head of the list, assigning an id when it has none.
func (c *Collection[T]) Prepend(ctx context.Context, item T) (T, error) {
	return c.insert(ctx, item, true)
}

func (c *Collection[T]) insert(ctx context.Context, item T, head bool) (T, error) {
	if strings.TrimSpace(c.identity.ID(item)) == "" {
		item = c.identity.WithID(item, c.newID())
	}
	err := c.mutate(ctx, func(items []T) ([]T, error) {
		if head {
			return append([]T{item}, items...), nil
		}
		return append(items, item), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Update applies patch to the element with the given id. The id itself is
// preserved whatever patch does.
func (c *Collection[T]) Update(ctx context.Context, id string, patch func(T) T) (T, error) {
	var updated T
	err := c.mutate(ctx, func(items []T) ([]T, error) {
		for i, item := range items {
			if c.identity.ID(item) != id {
				continue
			}
			updated = c.identity.WithID(patch(item), id)
			items[i] = updated
			return items, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes the element with the given id. Missing ids return ErrNotFound.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(items []T) ([]T, error) {
		out := items[:0]
		found := false
		for _, item := range items {
			if c.identity.ID(item) == id {
				found = true
				continue
			}
			out = append(out, item)
		}
		if !found {
			return nil, ErrNotFound
		}
		return out, nil
	})
}

func (c *Collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return domain.UpdateJSON(ctx, c.store, c.key,
		func() []T { return []T{} },
		func(items []T, _ bool) ([]T, error) {
			if items == nil {
				items = []T{}
			}
			return fn(items)
		})
}
