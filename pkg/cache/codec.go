package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal encodes v for storage.
func Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data produced by [Marshal] into v.
func Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}

// GetValue fetches key and decodes it into a T. A corrupt entry is deleted
// and reported as a miss.
func GetValue[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var zero T
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := Unmarshal(data, &v); err != nil {
		_ = c.Delete(ctx, key)
		return zero, false, nil
	}
	return v, true, nil
}

// SetValue encodes v and stores it under key.
func SetValue(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
