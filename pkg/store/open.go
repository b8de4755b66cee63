package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config selects and configures a store backend.
type Config struct {
	Backend string `toml:"backend"`
	// Dir is the chart directory for the file backend.
	Dir string `toml:"dir"`
	// Path is the database file for the sqlite backend; it defaults to
	// charts.db next to the file backend's directory.
	Path            string        `toml:"path"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	Timeout         time.Duration `toml:"timeout"`
}

// Open returns the configured backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(filepath.Dir(dir), "charts.db")
		}
		return NewSQLiteStore(ctx, path)
	case BackendMongo:
		return NewMongoStore(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Timeout:    cfg.Timeout,
		})
	}
	return nil, fmt.Errorf("unknown store backend %q (want file, sqlite or mongo)", cfg.Backend)
}
