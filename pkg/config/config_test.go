package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/simcheck/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Signature.GridSize != 50 || cfg.Signature.Scale != 100 {
		t.Errorf("signature defaults = %+v", cfg.Signature)
	}
	if cfg.Signature.SampleSize != nil {
		t.Error("sample size should be derived by default")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[signature]
sample_size = 0
max_distance = 12.5

[normalize]
interpolator = "catmull-rom"

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2
ttl = "90m"
namespace = "maps:"

[store]
backend = "none"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Signature.SampleSize == nil || *cfg.Signature.SampleSize != 0 {
		t.Errorf("sample_size = %v, want explicit 0", cfg.Signature.SampleSize)
	}
	if cfg.Signature.MaxDistance != 12.5 {
		t.Errorf("max_distance = %v, want 12.5", cfg.Signature.MaxDistance)
	}
	if cfg.Signature.GridSize != 50 {
		t.Errorf("grid_size = %d, want default 50", cfg.Signature.GridSize)
	}
	if cfg.Normalize.Interpolator != "catmull-rom" || cfg.Normalize.VectorBackend != "oksvg" {
		t.Errorf("normalize = %+v", cfg.Normalize)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Store.Backend != StoreNone {
		t.Errorf("store.backend = %q, want none", cfg.Store.Backend)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") with no file: %v", err)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("expected defaults, got cache backend %q", cfg.Cache.Backend)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !os.IsNotExist(err) {
		t.Errorf("Load(explicit missing) error = %v, want not-exist", err)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[signature`},
		{"unknown key", "[signature]\ngrid = 10\n"},
		{"unknown section", "[render]\nstyle = 'x'\n"},
		{"bad ttl", "[cache]\nttl = 'soon'\n"},
		{"zero grid", "[signature]\ngrid_size = 0\n"},
		{"negative scale", "[signature]\nscale = -1.0\n"},
		{"negative sample", "[signature]\nsample_size = -2\n"},
		{"negative threshold", "[signature]\nmax_distance = -1.0\n"},
		{"interpolator", "[normalize]\ninterpolator = 'lanczos'\n"},
		{"vector backend", "[normalize]\nvector_backend = 'inkscape'\n"},
		{"cache backend", "[cache]\nbackend = 'memcached'\n"},
		{"store backend", "[store]\nbackend = 'postgres'\n"},
		{"mongo without uri", "[store]\nbackend = 'mongo'\n"},
		{"upload limit", "[server]\nmax_upload_mb = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultPath(); got != filepath.Join("/cfg", "simcheck", "config.toml") {
		t.Errorf("DefaultPath() = %s", got)
	}
	if got := DefaultCacheDir(); got != filepath.Join("/cache", "simcheck") {
		t.Errorf("DefaultCacheDir() = %s", got)
	}
	if got := DefaultDataDir(); got != filepath.Join("/data", "simcheck") {
		t.Errorf("DefaultDataDir() = %s", got)
	}
}
