// Package cache memoises pipeline stages.
//
// Layout is a pure function of the sorted outline and the configuration, so
// its result can be stored under a key derived from both and reused until
// either changes. Extraction and rendered artefacts are cached the same way.
//
// Backends:
//   - [FileCache]: per-user directory, used by the CLI
//   - [MemoryCache]: in-process, used by the preview TUI and the server
//   - [RedisCache]: shared between server replicas
//   - [NullCache]: disables caching
//
// Values are opaque bytes; [Marshal] and [Unmarshal] encode structured values
// with msgpack.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default TTLs per stage.
const (
	TTLLines    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
