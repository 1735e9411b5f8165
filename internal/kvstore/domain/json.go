package domain

import (
	"context"
	"encoding/json"
)

// GetJSON decodes the value stored at key. An absent or undecodable value
// yields fallback; only store failures are returned as errors.
func GetJSON[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return fallback, err
	}
	if !ok || len(raw) == 0 {
		return fallback, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback, nil
	}
	return out, nil
}

func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// UpdateJSON applies fn atomically to the decoded value at key. malformed
// reports whether the stored bytes could not be decoded and fallback was used.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fallback func() T, fn func(current T, malformed bool) (T, error)) error {
	return s.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		value := fallback()
		malformed := false
		if exists && len(current) > 0 {
			var decoded T
			if err := json.Unmarshal(current, &decoded); err != nil {
				malformed = true
			} else {
				value = decoded
			}
		}
		next, err := fn(value, malformed)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}
