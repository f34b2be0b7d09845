// Package cache реализует Redis-маркер однократной обработки событий.
// Воркер очереди помечает событие перед провижинингом; повторная доставка
// того же события пропускается, пока маркер жив.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
)

type Cache struct {
	Db *redis.Client
}

func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// MarkProcessed помечает событие как обрабатываемое. Возвращает false, если
// маркер уже стоит, то есть событие уже было взято в обработку.
func (c *Cache) MarkProcessed(key string, expiration time.Duration) (bool, error) {
	const op = "cache.MarkProcessed"
	ok, err := c.Db.SetNX(context.Background(), key, "1", expiration).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Release снимает маркер обработки, чтобы повторная доставка события могла
// быть обработана заново после неуспешного провижининга.
func (c *Cache) Release(key string) error {
	return c.Db.Del(context.Background(), key).Err()
}
