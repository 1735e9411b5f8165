package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/docflow/internal/catalog/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/collection"
)

// registry adapts a collection to domain.Registry. normalize validates and
// cleans input before any write; stamp merges bookkeeping fields from the
// stored value (nil on create).
type registry[T any] struct {
	items     *collection.Collection[T]
	normalize func(T) (T, error)
	stamp     func(v T, existing *T) T
}

func (r *registry[T]) List(ctx context.Context) ([]T, error) {
	return r.items.List(ctx)
}

func (r *registry[T]) Get(ctx context.Context, id string) (T, error) {
	v, err := r.items.Get(ctx, id)
	return v, mapErr(err)
}

func (r *registry[T]) Create(ctx context.Context, v T) (T, error) {
	v, err := r.normalize(v)
	if err != nil {
		var zero T
		return zero, err
	}
	if r.stamp != nil {
		v = r.stamp(v, nil)
	}
	return r.items.Add(ctx, v)
}

func (r *registry[T]) Update(ctx context.Context, id string, v T) (T, error) {
	v, err := r.normalize(v)
	if err != nil {
		var zero T
		return zero, err
	}
	updated, err := r.items.Update(ctx, id, func(existing T) T {
		if r.stamp != nil {
			return r.stamp(v, &existing)
		}
		return v
	})
	return updated, mapErr(err)
}

func (r *registry[T]) Delete(ctx context.Context, id string) error {
	return mapErr(r.items.Delete(ctx, id))
}

func mapErr(err error) error {
	if errors.Is(err, collection.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
