package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salonik/internal/config"

	"github.com/redis/go-redis/v9"
)

// SlotKey builds the cache key for one availability question. Date sits
// before the staff part so a whole day can be invalidated by prefix.
func SlotKey(salonID int64, date string, staffID *int64, duration int) string {
	staffPart := "any"
	if staffID != nil {
		staffPart = fmt.Sprintf("%d", *staffID)
	}
	return fmt.Sprintf("slots:%d:%s:%s:%d", salonID, date, staffPart, duration)
}

func datePrefix(salonID int64, date string) string {
	return fmt.Sprintf("slots:%d:%s:", salonID, date)
}

type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl}
}

func (r *RedisSlotCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get slots from redis: %w", err)
	}

	var labels []string
	if err := json.Unmarshal([]byte(val), &labels); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slots: %w", err)
	}
	return labels, true, nil
}

func (r *RedisSlotCache) Set(ctx context.Context, key string, labels []string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	// an empty list is a valid cached answer ("fully booked")
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in redis: %w", err)
	}
	return nil
}

func (r *RedisSlotCache) InvalidateDate(ctx context.Context, salonID int64, date string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	iter := r.client.Scan(ctx, 0, datePrefix(salonID, date)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan slot keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete slot keys: %w", err)
	}
	return nil
}
