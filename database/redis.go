package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginFailLimit  = 5
	loginFailWindow = 15 * time.Minute
)

// RedisClient wraps the redis connection used for login throttling.
type RedisClient struct {
	client *redis.Client
}

// GetRedisClient connects to redis and verifies the connection with a ping.
func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func failKey(email string) string {
	return "login:fail:" + email
}

// TooManyFailures reports whether the email is inside the login cooldown.
func (rc *RedisClient) TooManyFailures(ctx context.Context, email string) (bool, error) {
	count, err := rc.client.Get(ctx, failKey(email)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= loginFailLimit, nil
}

// RecordFailure bumps the failed-attempt counter. The cooldown window starts
// at the first failure and is not extended by later ones.
func (rc *RedisClient) RecordFailure(ctx context.Context, email string) error {
	key := failKey(email)
	count, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return rc.client.Expire(ctx, key, loginFailWindow).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (rc *RedisClient) Reset(ctx context.Context, email string) error {
	return rc.client.Del(ctx, failKey(email)).Err()
}
