package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var ErrCacheMiss = errors.New("cache miss")

// キャッシュの裏にある読み取り元（DB）
type ProductSource interface {
	FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error)
}

// ProductCache はカート追加時の商品読み取りをRedisで受ける。
// 在庫の確定判定には使わない（チェックアウトは必ずDBを行ロックで読む）。
type ProductCache struct {
	client *redis.Client
	source ProductSource
	ttl    time.Duration
	log    *slog.Logger
	sfg    singleflight.Group
}

func NewProductCache(client *redis.Client, source ProductSource, ttl time.Duration, log *slog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ProductCache{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log,
	}
}

// FindByID はキャッシュ→DBの順に読む。
// Redisが落ちていてもDBから返す。
func (c *ProductCache) FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error) {
	key := cacheKey(tenantID, productID)

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		p, err := c.get(ctx, key)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.log.WarnContext(ctx, "product cache get failed", "key", key, "err", err)
		}

		p, err = c.source.FindByID(ctx, tenantID, productID)
		if err != nil {
			return model.Product{}, err
		}

		if err := c.set(ctx, key, p); err != nil {
			c.log.WarnContext(ctx, "product cache set failed", "key", key, "err", err)
		}
		return p, nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return v.(model.Product), nil
}

// Invalidate は在庫が変わった商品を捨てる
func (c *ProductCache) Invalidate(ctx context.Context, tenantID int64, productID int64) error {
	if err := c.client.Del(ctx, cacheKey(tenantID, productID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *ProductCache) get(ctx context.Context, key string) (model.Product, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, ErrCacheMiss
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("redis get failed: %w", err)
	}

	var p model.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Product{}, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return p, nil
}

func (c *ProductCache) set(ctx context.Context, key string, p model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(tenantID int64, productID int64) string {
	return fmt.Sprintf("product:%d:%d", tenantID, productID)
}
