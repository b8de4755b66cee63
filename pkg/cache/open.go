package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`
	// Dir is the FileCache directory.
	Dir string `toml:"dir"`
	// Size and TTL configure the MemoryCache.
	Size int           `toml:"size"`
	TTL  time.Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Open returns the configured backend. An empty backend means file when Dir
// is set and none otherwise.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendNone
		if cfg.Dir != "" {
			backend = BackendFile
		}
	}
	switch backend {
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache needs a directory")
		}
		return NewFileCache(cfg.Dir)
	case BackendMemory:
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	case BackendRedis:
		return NewRedisCache(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "kintree:",
		})
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}
