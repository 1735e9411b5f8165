package repository

import (
	"context"
	"encoding/json"

	kvdomain "github.com/smallbiznis/docflow/internal/kvstore/domain"
	"github.com/smallbiznis/docflow/internal/numbering/domain"
	"go.uber.org/zap"
)

type repository struct {
	store kvdomain.Store
	log   *zap.Logger
}

func NewRepository(store kvdomain.Store, log *zap.Logger) domain.Repository {
	return &repository{
		store: store,
		log:   log.Named("numbering.repository"),
	}
}

func (r *repository) Load(ctx context.Context) (domain.State, error) {
	raw, ok, err := r.store.Get(ctx, kvdomain.KeyNumbering)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.State{}, nil
	}
	return r.decode(raw), nil
}

func (r *repository) Increment(ctx context.Context, code string, year int) (int64, error) {
	var next int64
	err := r.update(ctx, func(state domain.State) {
		next = state.Sequence(code, year) + 1
		state.Set(code, year, next)
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) Reset(ctx context.Context, code string, year int) error {
	return r.update(ctx, func(state domain.State) {
		state.Set(code, year, 0)
	})
}

func (r *repository) update(ctx context.Context, mutate func(domain.State)) error {
	return r.store.Update(ctx, kvdomain.KeyNumbering, func(current []byte, exists bool) ([]byte, error) {
		state := domain.State{}
		if exists {
			state = r.decode(current)
		}
		mutate(state)
		return json.Marshal(state)
	})
}

// decode never fails: unreadable state is replaced by an empty mapping.
func (r *repository) decode(raw []byte) domain.State {
	if len(raw) == 0 {
		return domain.State{}
	}
	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		r.log.Warn("numbering state is malformed, starting from empty state", zap.Error(err))
		return domain.State{}
	}
	if state == nil {
		return domain.State{}
	}
	for code, years := range state {
		if years == nil {
			delete(state, code)
		}
	}
	return state
}
