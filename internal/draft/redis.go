package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"filmsphere/internal/config"
	"filmsphere/internal/models"
)

// RedisStorage keeps the draft slot under a single redis key, shared by
// any process of the same session. Last write wins; there is no cross
// process coordination (see DESIGN.md).
type RedisStorage struct {
	client *redis.Client
	key    string
}

// redisKeyTTL caps how long a stale draft can linger in redis. It exceeds
// the hold duration so lazy expiry in the store still sees the record.
const redisKeyTTL = HoldDuration + time.Minute

func NewRedisStorage(cfg config.RedisConfig) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStorage{client: rdb, key: cfg.Key}, nil
}

func (r *RedisStorage) Load() (*models.Draft, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft from redis: %w", err)
	}

	var d models.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft from redis: %w", err)
	}
	return &d, nil
}

func (r *RedisStorage) Save(d *models.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, r.key, data, redisKeyTTL).Err(); err != nil {
		return fmt.Errorf("save draft to redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear draft in redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
