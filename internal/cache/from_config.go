package cache

import (
	"strings"

	"comment-ranker/internal/config"
	"comment-ranker/internal/logger"
)

// NewFromConfig returns nil when caching is disabled. A Redis backend without
// an address falls back to memory.
func NewFromConfig(cfg config.Config) Cache {
	backend := strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	switch backend {
	case "", "memory":
		return NewMemoryCache()
	case "redis":
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			logger.Warn("REDIS_ADDR is empty, using memory cache")
			return NewMemoryCache()
		}
		return NewRedisCache(RedisOptions{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		})
	case "none", "disabled", "off":
		return nil
	default:
		logger.Warn("unknown cache backend, using memory cache", "backend", backend)
		return NewMemoryCache()
	}
}
