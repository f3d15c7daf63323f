package cli

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/callscape/callscape/pkg/cache"
	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/observability"
	"github.com/callscape/callscape/pkg/profile"
)

// loadProfile reads and parses a profile document. It returns both the
// parsed profile and the raw bytes, which feed the render cache key.
func loadProfile(ctx context.Context, path string) (*profile.Profile, []byte, error) {
	logger := loggerFromContext(ctx)
	start := time.Now()
	observability.Render().OnLoadStart(ctx, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.New(errors.ErrCodeFileNotFound, "profile file not found: %s", path)
		}
		observability.Render().OnLoadComplete(ctx, path, 0, 0, time.Since(start), err)
		return nil, nil, err
	}

	p, err := profile.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		observability.Render().OnLoadComplete(ctx, path, 0, 0, time.Since(start), err)
		return nil, nil, err
	}

	nodes := len(p.Graph.Nodes())
	observability.Render().OnLoadComplete(ctx, path, nodes, p.Table.Len(), time.Since(start), nil)
	logger.Debug("loaded profile", "path", path, "nodes", nodes, "rows", p.Table.Len())
	return p, raw, nil
}

// openCache builds the configured cache backend. Backend failures fall
// back to the null cache with a warning so rendering still works.
func openCache(ctx context.Context, cfg CacheConfig) cache.Cache {
	logger := loggerFromContext(ctx)

	switch cfg.Backend {
	case "none":
		return cache.NewNullCache()
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return c
	default:
		dir, err := cacheDir(cfg)
		if err == nil {
			var c cache.Cache
			if c, err = cache.NewFileCache(dir); err == nil {
				return c
			}
		}
		logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
}
