package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the task-list cache with a shared store so replicas see each
// other's invalidations. Same generation scheme as Memory, with the counter
// kept in redis (INCR).
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) Get(ctx context.Context, userID, queryKey string) ([]byte, bool) {
	key, err := c.key(ctx, userID, queryKey)
	if err != nil {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil or transport error, either way a miss
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, userID, queryKey string, payload []byte) {
	key, err := c.key(ctx, userID, queryKey)
	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	_ = c.rdb.Incr(ctx, genKey(userID)).Err()
}

func (c *Redis) key(ctx context.Context, userID, queryKey string) (string, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	return "tasks:list:v1:u=" + userID + ":g=" + strconv.FormatInt(gen, 10) + ":" + queryKey, nil
}

func genKey(userID string) string {
	return "tasks:gen:u=" + userID
}
