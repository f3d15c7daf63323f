package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/callscape/callscape/pkg/errors"
)

// Config holds the user-level defaults read from the TOML config file.
// Command-line flags override everything here.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds default render options.
type RenderConfig struct {
	Colormap   string `toml:"colormap"`
	Precision  int    `toml:"precision"`
	Unicode    bool   `toml:"unicode"`
	NameColumn string `toml:"name_column"`
}

// CacheConfig selects and configures the render cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file backend directory. Empty means the platform
	// cache directory.
	Dir string `toml:"dir"`

	// TTL bounds entry lifetime, e.g. "168h". Empty or zero keeps
	// entries forever.
	TTL string `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Colormap:  "RdYlGn",
			Precision: 2,
			Unicode:   true,
		},
		Cache: CacheConfig{
			Backend: "file",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// ConfigPath returns the default config file location,
// $XDG_CONFIG_HOME/callscape/config.toml or the platform equivalent.
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "callscape", "config.toml"), nil
}

// LoadConfig reads the config file at path. A missing file is not an
// error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file")
	}
	return cfg, nil
}

// TTLDuration parses the configured cache TTL. Invalid or empty values
// mean no expiry.
func (c CacheConfig) TTLDuration() time.Duration {
	if c.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// cacheDir resolves the file cache directory, honoring the config
// override.
func cacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "callscape"), nil
}
