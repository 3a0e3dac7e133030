// Package config loads simcheck settings from a TOML file.
//
// The file is optional. Every field has a documented default and command
// line flags override whatever the file sets.
//
//	[signature]
//	grid_size = 50
//	scale = 100.0
//	max_distance = 25.0
//
//	[normalize]
//	interpolator = "bilinear"
//	vector_backend = "oksvg"
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "720h"
//
//	[store]
//	backend = "sqlite" # sqlite, mongo or none
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/simcheck/pkg/errors"
	"github.com/matzehuels/simcheck/pkg/raster"
	"github.com/matzehuels/simcheck/pkg/signature"
	"github.com/matzehuels/simcheck/pkg/vector"
)

const appName = "simcheck"

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreNone   = "none"
)

// Config is the full configuration.
type Config struct {
	Signature SignatureConfig `toml:"signature"`
	Normalize NormalizeConfig `toml:"normalize"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
}

// SignatureConfig configures the signature engine.
type SignatureConfig struct {
	GridSize int     `toml:"grid_size"`
	Scale    float64 `toml:"scale"`
	// SampleSize overrides the derived sample half-width when set.
	SampleSize *int `toml:"sample_size"`
	// MaxDistance is the default threshold for compare.
	MaxDistance float64 `toml:"max_distance"`
}

// NormalizeConfig configures source loading.
type NormalizeConfig struct {
	Interpolator  string `toml:"interpolator"`
	VectorBackend string `toml:"vector_backend"`
	// Resolution in DPI for PDF pages.
	Resolution int `toml:"resolution"`
}

// CacheConfig selects and configures the signature cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	Namespace     string   `toml:"namespace"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// StoreConfig selects and configures comparison history.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// MaxUploadMB bounds multipart request bodies.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// Duration is a time.Duration written as a string ("720h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Signature: SignatureConfig{
			GridSize: signature.DefaultGridSize,
			Scale:    signature.DefaultScale,
		},
		Normalize: NormalizeConfig{
			Interpolator:  raster.InterpBiLinear,
			VectorBackend: vector.BackendOKSVG,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       DefaultCacheDir(),
			TTL:       Duration{30 * 24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Backend:  StoreSQLite,
			Path:     filepath.Join(DefaultDataDir(), "history.db"),
			Database: appName,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 64,
		},
	}
}

// Load reads the file at path over the defaults. An empty path reads
// [DefaultPath] and tolerates its absence.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the defaults cannot fix.
func (c *Config) Validate() error {
	s := c.Signature
	if s.GridSize < 1 {
		return invalid("signature.grid_size must be positive (got %d)", s.GridSize)
	}
	if s.Scale <= 0 {
		return invalid("signature.scale must be positive (got %v)", s.Scale)
	}
	if s.SampleSize != nil && *s.SampleSize < 0 {
		return invalid("signature.sample_size must not be negative (got %d)", *s.SampleSize)
	}
	if err := errors.ValidateThreshold(s.MaxDistance); err != nil {
		return invalid("signature.max_distance: %s", errors.UserMessage(err))
	}

	if _, err := raster.ParseInterpolator(c.Normalize.Interpolator); err != nil {
		return err
	}
	if _, err := vector.New(c.Normalize.VectorBackend); err != nil {
		return err
	}
	if c.Normalize.Resolution < 0 {
		return invalid("normalize.resolution must not be negative (got %d)", c.Normalize.Resolution)
	}

	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	case CacheNone:
	default:
		return invalid("unknown cache.backend %q (must be file, redis or none)", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreSQLite:
		if c.Store.Path == "" {
			return invalid("store.path is required for the sqlite backend")
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return invalid("store.mongo_uri is required for the mongo backend")
		}
	case StoreNone:
	default:
		return invalid("unknown store.backend %q (must be sqlite, mongo or none)", c.Store.Backend)
	}

	if c.Server.MaxUploadMB < 1 {
		return invalid("server.max_upload_mb must be positive (got %d)", c.Server.MaxUploadMB)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/simcheck/config.toml.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/simcheck.
func DefaultCacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DefaultDataDir returns $XDG_DATA_HOME/simcheck.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}
