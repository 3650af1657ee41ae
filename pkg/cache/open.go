package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Dir is the FileCache directory, or the directory of the SQLite
	// database when Path is empty.
	Dir   string
	Path  string
	Redis RedisConfig
	Mongo MongoConfig
}

// DefaultDir returns the per-user cache directory, falling back to a
// directory under the system temp dir.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "designtree")
	}
	return filepath.Join(os.TempDir(), "designtree-cache")
}

// Open builds the backend named by opts.Backend. An empty backend disables
// caching.
func Open(ctx context.Context, opts Options) (Cache, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		return NewFileCache(dir)
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			path = filepath.Join(dir, "cache.db")
		}
		return NewSQLiteCache(path)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoCache(ctx, opts.Mongo)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
