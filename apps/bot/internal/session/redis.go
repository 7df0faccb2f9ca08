package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "baccarat:session:"
	redisUpdatedSet = "baccarat:sessions:updated"
)

// RedisStore keeps one msgpack blob per key plus a sorted set of update times for
// the idle sweep.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore pings addr before returning. Blobs expire after ttl as a backstop
// for the sweeper; zero keeps them forever.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Record, error) {
	b, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}
	return decodeRecord(b)
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	b, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+rec.Key, b, s.ttl)
		pipe.ZAdd(ctx, redisUpdatedSet, redis.Z{Score: float64(rec.UpdatedAt.UnixMilli()), Member: rec.Key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.Key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKeyPrefix+key)
		pipe.ZRem(ctx, redisUpdatedSet, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	keys, err := s.client.ZRangeByScore(ctx, redisUpdatedSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}
	return keys, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
