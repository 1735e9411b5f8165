package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/docflow/internal/kvstore/domain"
)

// Store keeps values in process memory. Values are copied on the way in and
// out so callers cannot mutate stored bytes.
type Store struct {
	namespace string

	mu     sync.RWMutex
	values map[string][]byte
}

func New(namespace string) *Store {
	return &Store{
		namespace: namespace,
		values:    make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[domain.NamespacedKey(s.namespace, key)]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[domain.NamespacedKey(s.namespace, key)] = clone(value)
	return nil
}

func (s *Store) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := domain.NamespacedKey(s.namespace, key)
	current, ok := s.values[k]
	next, err := fn(clone(current), ok)
	if err != nil {
		return err
	}
	s.values[k] = clone(next)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, domain.NamespacedKey(s.namespace, key))
	return nil
}

// Keys lists the raw namespaced keys, mainly for tests.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return domain.ErrEmptyKey
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
