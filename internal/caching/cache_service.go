package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockhub/internal/models"
)

type CacheService interface {
	// Item list caching per owner
	GetItems(ctx context.Context, owner string) ([]models.Item, error)
	SetItems(ctx context.Context, owner string, items []models.Item, ttl time.Duration) error
	DeleteItems(ctx context.Context, owner string) error

	// Alert list caching per owner
	GetAlerts(ctx context.Context, owner string) ([]models.Alert, error)
	SetAlerts(ctx context.Context, owner string, alerts []models.Alert, ttl time.Duration) error
	DeleteAlerts(ctx context.Context, owner string) error

	// Dashboard summary caching
	GetSummary(ctx context.Context, owner string) (*models.Summary, error)
	SetSummary(ctx context.Context, owner string, summary *models.Summary, ttl time.Duration) error

	// Cache invalidation
	InvalidateOwner(ctx context.Context, owner string) error

	// Rate limiting (manual refresh abuse)
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("Redis connection established")
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetItems(ctx context.Context, owner string) ([]models.Item, error) {
	key := fmt.Sprintf("stockhub:items:%s", owner)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var items []models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetItems(ctx context.Context, owner string, items []models.Item, ttl time.Duration) error {
	key := fmt.Sprintf("stockhub:items:%s", owner)
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItems(ctx context.Context, owner string) error {
	key := fmt.Sprintf("stockhub:items:%s", owner)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetAlerts(ctx context.Context, owner string) ([]models.Alert, error) {
	key := fmt.Sprintf("stockhub:alerts:%s", owner)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var alerts []models.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *redisCacheService) SetAlerts(ctx context.Context, owner string, alerts []models.Alert, ttl time.Duration) error {
	key := fmt.Sprintf("stockhub:alerts:%s", owner)
	data, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteAlerts(ctx context.Context, owner string) error {
	key := fmt.Sprintf("stockhub:alerts:%s", owner)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetSummary(ctx context.Context, owner string) (*models.Summary, error) {
	key := fmt.Sprintf("stockhub:summary:%s", owner)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetSummary(ctx context.Context, owner string, summary *models.Summary, ttl time.Duration) error {
	key := fmt.Sprintf("stockhub:summary:%s", owner)
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateOwner(ctx context.Context, owner string) error {
	for _, prefix := range []string{"items", "alerts", "summary"} {
		key := fmt.Sprintf("stockhub:%s:%s", prefix, owner)
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("stockhub:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, fmt.Sprintf("stockhub:%s", key), value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, fmt.Sprintf("stockhub:%s", key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, fmt.Sprintf("stockhub:%s", key)).Err()
}
