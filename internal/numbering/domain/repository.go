package domain

import "context"

// Repository owns the persisted State. Increment and Reset are each a single
// atomic read-modify-write against the store.
type Repository interface {
	Load(ctx context.Context) (State, error)
	Increment(ctx context.Context, code string, year int) (int64, error)
	Reset(ctx context.Context, code string, year int) error
}
