package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist stores logged-out tokens until their natural
// expiry. Redis key TTLs handle cleanup.
type RedisTokenBlacklist struct {
	Client *redis.Client
}

// TokenBlacklist is the global instance; nil means logout invalidation
// is disabled and tokens simply age out.
var TokenBlacklist *RedisTokenBlacklist

// NewTokenBlacklist creates a Redis-backed token blacklist
func NewTokenBlacklist(redisURL string) (*RedisTokenBlacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenBlacklist{Client: client}, nil
}

// BlacklistToken invalidates a session token until it would have
// expired anyway.
func BlacklistToken(ctx context.Context, tokenString string) error {
	if TokenBlacklist == nil {
		return nil
	}
	return TokenBlacklist.BlacklistToken(ctx, tokenString)
}

// IsTokenBlacklisted reports whether a token has been logged out.
func IsTokenBlacklisted(ctx context.Context, tokenString string) bool {
	if TokenBlacklist == nil {
		return false
	}
	return TokenBlacklist.IsTokenBlacklisted(ctx, tokenString)
}

func (tb *RedisTokenBlacklist) BlacklistToken(ctx context.Context, tokenString string) error {
	ttl := time.Until(TokenExpiry(tokenString))
	if ttl <= 0 {
		// Already expired, the auth gate rejects it regardless
		return nil
	}

	key := blacklistKey(tokenString)
	if err := tb.Client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (tb *RedisTokenBlacklist) IsTokenBlacklisted(ctx context.Context, tokenString string) bool {
	n, err := tb.Client.Exists(ctx, blacklistKey(tokenString)).Result()
	if err != nil {
		log.Printf("Error checking token blacklist: %v", err)
		return false
	}
	return n > 0
}

// Close closes the Redis connection
func (tb *RedisTokenBlacklist) Close() error {
	return tb.Client.Close()
}

func blacklistKey(tokenString string) string {
	return "blacklist:token:" + tokenString
}
