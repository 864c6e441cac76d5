package cache

import (
	"fmt"

	"taskdo-service/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func InitializeCache(cfg config.CacheConfig) (cache.Cache, error) {
	c, err := cache.New(cache.Config{
		Type:          cfg.Type,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err))
		return nil, fmt.Errorf("init %s cache: %w", cfg.Type, err)
	}
	logger.Info("Cache initialized", zap.String("type", cfg.Type))
	return c, nil
}
