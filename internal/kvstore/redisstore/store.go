package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/docflow/internal/kvstore/domain"
)

// fencedSetScript writes KEYS[2] only while KEYS[1] still holds the
// caller's lease token, so a writer whose lease expired cannot overwrite
// the value committed by the next lease holder.
const fencedSetScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[2], ARGV[2])
return 1
`

var fencedSet = redis.NewScript(fencedSetScript)

const (
	lockTTL      = 5 * time.Second
	lockBackoff  = 20 * time.Millisecond
	lockAttempts = 100
)

// Store keeps each key as a plain redis string under "<namespace>:<key>".
// Update serializes writers across processes with a lease lock on
// "<namespace>:<key>:lock".
type Store struct {
	client    *redis.Client
	locker    *Locker
	namespace string
}

func New(client *redis.Client, namespace string) *Store {
	return &Store{
		client:    client,
		locker:    NewLocker(client),
		namespace: namespace,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(key); err != nil {
		return nil, false, err
	}
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	if err := s.check(key); err != nil {
		return err
	}
	k := s.key(key)
	lockKey := LockKey(k)

	token, err := s.locker.Lock(ctx, lockKey, lockTTL, lockBackoff, lockAttempts)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("%w: %w", domain.ErrUpdateConflict, err)
		}
		return err
	}
	defer func() {
		_ = s.locker.Release(context.WithoutCancel(ctx), lockKey, token)
	}()

	current, err := s.client.Get(ctx, k).Bytes()
	exists := true
	if errors.Is(err, redis.Nil) {
		exists = false
		current = nil
	} else if err != nil {
		return err
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	written, err := fencedSet.Run(ctx, s.client, []string{lockKey, k}, token, next).Int()
	if err != nil {
		return err
	}
	if written == 0 {
		return fmt.Errorf("%w: lease on %s expired before write", domain.ErrUpdateConflict, k)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Store) key(key string) string {
	return domain.NamespacedKey(s.namespace, key)
}

func (s *Store) check(key string) error {
	if s == nil || s.client == nil {
		return domain.ErrNotConfigured
	}
	if strings.TrimSpace(key) == "" {
		return domain.ErrEmptyKey
	}
	return nil
}

func LockKey(namespacedKey string) string {
	return namespacedKey + ":lock"
}
