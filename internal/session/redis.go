package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "barber:session:"

// RedisStore keeps sessions in Redis so they survive restarts and can be
// shared by several processes. A zero ttl stores keys without expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis parses url and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) CreateSession(ctx context.Context, userID uint) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	// never overwrite a live session
	ok, err := s.rdb.SetNX(ctx, keyPrefix+token, strconv.FormatUint(uint64(userID), 10), s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return "", errors.New("session token collision")
	}
	return token, nil
}

func (s *RedisStore) ResolveSession(ctx context.Context, token string) (uint, bool, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve session: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session value: %w", err)
	}
	return uint(id), true, nil
}

func (s *RedisStore) DestroySession(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
