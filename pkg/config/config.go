// Package config loads the kintree TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/kintree/config.toml, or
// ~/.config/kintree/config.toml when XDG_CONFIG_HOME is unset. A missing file
// is not an error: every setting has a default, and command-line flags
// override whatever the file says.
//
//	[api]
//	base_url = "https://family.example.com"
//	timeout = "10s"
//
//	[layout]
//	orientation = "horizontal"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/notify"
	"github.com/matzehuels/kintree/pkg/store"
)

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL   string            `toml:"base_url"`
	Timeout   time.Duration     `toml:"timeout"`
	Headers   map[string]string `toml:"headers"`
	RateLimit float64           `toml:"rate_limit"`
	Burst     int               `toml:"burst"`
	Retries   int               `toml:"retries"`
	SearchTTL time.Duration     `toml:"search_ttl"`
}

// RenderConfig configures the render command.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Scale    float64  `toml:"scale"`
	Avatars  bool     `toml:"avatars"`
	Detailed bool     `toml:"detailed"`
}

// ServerConfig configures the chart server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// NotifyConfig configures user notices.
type NotifyConfig struct {
	TTL time.Duration `toml:"ttl"`
}

// Config is the whole configuration file.
type Config struct {
	API    APIConfig      `toml:"api"`
	Layout layout.Options `toml:"layout"`
	Render RenderConfig   `toml:"render"`
	Cache  cache.Config   `toml:"cache"`
	Store  store.Config   `toml:"store"`
	Server ServerConfig   `toml:"server"`
	Notify NotifyConfig   `toml:"notify"`
}

// Default values not owned by other packages.
const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultAddr    = "127.0.0.1:8420"
	DefaultScale   = 2.0
)

// Default returns the built-in configuration.
func Default() *Config {
	cacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "kintree")
	}
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   10 * time.Second,
			Retries:   1,
			SearchTTL: 2 * time.Minute,
		},
		Layout: layout.DefaultOptions(),
		Render: RenderConfig{Formats: []string{"svg"}, Scale: DefaultScale, Avatars: true},
		Cache:  cache.Config{Backend: cache.BackendFile, Dir: cacheDir, TTL: 24 * time.Hour},
		Store:  store.Config{Backend: store.BackendFile},
		Server: ServerConfig{Addr: DefaultAddr},
		Notify: NotifyConfig{TTL: notify.DefaultTTL},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "kintree", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "get home dir")
	}
	return filepath.Join(home, ".config", "kintree", "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path means
// [Path]; a missing file yields the defaults. Unknown keys are rejected so
// typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", path)
	}
	return cfg, nil
}

var knownFormats = []string{"svg", "json", "dot", "png", "pdf"}

// Validate checks values that decoding cannot.
func (c *Config) Validate() error {
	o, err := layout.ParseOrientation(string(c.Layout.Orientation))
	if err != nil {
		return err
	}
	c.Layout.Orientation = o

	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New(errors.ErrCodeInvalidInput, "api.base_url %q is not an http(s) URL", c.API.BaseURL)
		}
	}

	for name, v := range map[string]float64{
		"layout.card_width":     c.Layout.CardWidth,
		"layout.card_height":    c.Layout.CardHeight,
		"layout.unit_gap":       c.Layout.UnitGap,
		"layout.spouse_gap":     c.Layout.SpouseGap,
		"layout.generation_gap": c.Layout.GenerationGap,
		"layout.component_gap":  c.Layout.ComponentGap,
		"layout.margin":         c.Layout.Margin,
		"render.scale":          c.Render.Scale,
		"api.rate_limit":        c.API.RateLimit,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative (got %v)", name, v)
		}
	}
	for name, v := range map[string]int{
		"api.burst":      c.API.Burst,
		"api.retries":    c.API.Retries,
		"cache.size":     c.Cache.Size,
		"cache.redis_db": c.Cache.RedisDB,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative (got %d)", name, v)
		}
	}
	for name, d := range map[string]time.Duration{
		"api.timeout":    c.API.Timeout,
		"api.search_ttl": c.API.SearchTTL,
		"cache.ttl":      c.Cache.TTL,
		"notify.ttl":     c.Notify.TTL,
	} {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must not be negative (got %s)", name, d)
		}
	}

	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "", store.BackendFile, store.BackendSQLite:
	case store.BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store.backend %q", c.Store.Backend)
	}
	for _, f := range c.Render.Formats {
		if !slices.Contains(knownFormats, f) {
			return errors.New(errors.ErrCodeInvalidInput, "unknown render format %q (want %s)", f, strings.Join(knownFormats, ", "))
		}
	}
	return nil
}

// Template is written by "kintree config init".
const Template = `# kintree configuration

[api]
base_url = "http://localhost:3000"
timeout = "10s"
retries = 1
# rate_limit = 5.0   # requests per second, 0 disables
# burst = 1
search_ttl = "2m"

# [api.headers]
# Authorization = "Bearer ..."

[layout]
orientation = "vertical"   # or "horizontal"
# card_width = 220
# card_height = 80
# generation_gap = 120

[render]
formats = ["svg"]
scale = 2.0
avatars = true

[cache]
backend = "file"   # file, memory, redis or none
ttl = "24h"
# redis_addr = "localhost:6379"

[store]
backend = "file"   # file, sqlite or mongo
# path = "/var/lib/kintree/charts.db"
# mongo_uri = "mongodb://localhost:27017"

[server]
addr = "127.0.0.1:8420"

[notify]
ttl = "4s"
`

// WriteTemplate writes [Template] to path unless a file already exists.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// Encode renders c as TOML, for "kintree config show".
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return b.String(), nil
}
