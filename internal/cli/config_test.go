package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/callscape/callscape/pkg/errors"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.Colormap != "RdYlGn" || !cfg.Render.Unicode {
		t.Errorf("defaults not applied: %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[render]
colormap = "viridis"
precision = 3

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "24h"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.Colormap != "viridis" || cfg.Render.Precision != 3 {
		t.Errorf("render config = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
	if got := cfg.Cache.TTLDuration(); got != 24*time.Hour {
		t.Errorf("TTLDuration() = %v, want 24h", got)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[render\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestTTLDuration(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"", 0},
		{"90m", 90 * time.Minute},
		{"garbage", 0},
		{"-1h", 0},
	}
	for _, tt := range tests {
		if got := (CacheConfig{TTL: tt.ttl}).TTLDuration(); got != tt.want {
			t.Errorf("TTLDuration(%q) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestCacheDirOverride(t *testing.T) {
	dir, err := cacheDir(CacheConfig{Dir: "/tmp/custom"})
	if err != nil || dir != "/tmp/custom" {
		t.Errorf("cacheDir() = %q, %v; want /tmp/custom", dir, err)
	}
}
