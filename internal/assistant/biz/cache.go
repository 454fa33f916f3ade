package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// SearchCacheConfig 检索缓存配置。
type SearchCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// SearchCache 缓存渲染后的检索结果。知识库变化时整体清空。
type SearchCache struct {
	redis  *goredis.Client
	config *SearchCacheConfig
}

// NewSearchCache 创建检索缓存实例。
func NewSearchCache(redis *goredis.Client, config *SearchCacheConfig) *SearchCache {
	if config == nil {
		config = &SearchCacheConfig{
			Enabled:   false,
			TTL:       10 * time.Minute,
			KeyPrefix: "naughty:search:",
		}
	}
	return &SearchCache{redis: redis, config: config}
}

// Enabled reports whether lookups can hit.
func (c *SearchCache) Enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

// 匹配不区分大小写，因此键基于小写查询的 SHA256。
func (c *SearchCache) key(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return c.config.KeyPrefix + hex.EncodeToString(sum[:])
}

// Get 返回缓存的结果；未命中时 ok 为 false。
func (c *SearchCache) Get(ctx context.Context, query string) (string, bool, error) {
	if !c.Enabled() {
		return "", false, nil
	}

	val, err := c.redis.Get(ctx, c.key(query)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		logger.Warnw("failed to get from search cache", "error", err.Error())
		return "", false, err
	}
	return val, true, nil
}

// Set 写入缓存。
func (c *SearchCache) Set(ctx context.Context, query, rendered string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.redis.Set(ctx, c.key(query), rendered, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set search cache", "error", err.Error())
		return err
	}
	return nil
}

// Clear 使用 SCAN 删除所有检索缓存键。
func (c *SearchCache) Clear(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("error during cache scan", "error", err.Error())
		return err
	}

	logger.Debugw("cleared search cache", "deleted_count", deleted)
	return nil
}
