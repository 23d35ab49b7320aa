// Package cache provides the coin-search cache: a bounded in-memory tier
// with an optional Redis tier behind it. Redis access degrades gracefully,
// a small circuit breaker keeps a flapping Redis from stalling requests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"crypto-signal-engine/config"
)

// Key prefixes for cache entries.
const (
	PrefixSearch = "signal:search:%s"
	PrefixResult = "signal:result:%s:%s:%s"
)

// RedisService wraps the Redis client with health tracking. When Redis is
// unavailable operations return errors that callers handle by serving from
// the local tier or the upstream directly.
type RedisService struct {
	client       *redis.Client
	config       config.RedisConfig
	logger       zerolog.Logger
	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	maxFailures   int
	checkInterval time.Duration
}

// NewRedisService connects to Redis. A failed initial connection returns the
// service in degraded mode rather than an error, so the process still starts
// when Redis is down.
func NewRedisService(cfg config.RedisConfig, logger zerolog.Logger) (*RedisService, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	rs := &RedisService{
		client:        client,
		config:        cfg,
		logger:        logger.With().Str("component", "cache").Logger(),
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		rs.logger.Warn().Err(err).Msg("initial redis connection failed, starting degraded")
		return rs, nil
	}

	rs.healthy = true
	rs.lastCheck = time.Now()
	rs.logger.Info().Str("address", cfg.Address).Msg("redis connected")
	return rs, nil
}

// IsHealthy reports whether Redis is currently usable.
func (rs *RedisService) IsHealthy() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.healthy
}

func (rs *RedisService) recordFailure() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.failureCount++
	if rs.failureCount >= rs.maxFailures {
		if rs.healthy {
			rs.logger.Warn().Int("failures", rs.failureCount).Msg("circuit breaker open, redis marked unhealthy")
		}
		rs.healthy = false
	}
}

func (rs *RedisService) recordSuccess() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.healthy {
		rs.logger.Info().Msg("circuit breaker closed, redis recovered")
	}
	rs.healthy = true
	rs.failureCount = 0
	rs.lastCheck = time.Now()
}

// checkHealth kicks off a background ping when the breaker is open and the
// backoff interval has elapsed.
func (rs *RedisService) checkHealth() {
	rs.mu.RLock()
	shouldCheck := !rs.healthy && time.Since(rs.lastCheck) >= rs.checkInterval
	rs.mu.RUnlock()

	if !shouldCheck {
		return
	}

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := rs.client.Ping(pingCtx).Err(); err == nil {
			rs.recordSuccess()
		}
	}()
}

// GetJSON retrieves and unmarshals a JSON value. Returns redis.Nil on miss.
func (rs *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	data, err := rs.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return err
		}
		rs.recordFailure()
		return fmt.Errorf("redis get failed: %w", err)
	}
	rs.recordSuccess()

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return nil
}

// SetJSON marshals and stores a value with a TTL.
func (rs *RedisService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := rs.client.Set(ctx, key, string(data), ttl).Err(); err != nil {
		rs.recordFailure()
		return fmt.Errorf("redis set failed: %w", err)
	}
	rs.recordSuccess()
	return nil
}

// Delete removes a key.
func (rs *RedisService) Delete(ctx context.Context, key string) error {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	if err := rs.client.Del(ctx, key).Err(); err != nil {
		rs.recordFailure()
		return fmt.Errorf("redis delete failed: %w", err)
	}
	rs.recordSuccess()
	return nil
}

// Ping checks Redis connectivity directly.
func (rs *RedisService) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		rs.recordFailure()
		return err
	}
	rs.recordSuccess()
	return nil
}

// Close closes the Redis connection.
func (rs *RedisService) Close() error {
	if rs.client != nil {
		return rs.client.Close()
	}
	return nil
}

// Stats reports cache health for the health endpoint.
type Stats struct {
	Healthy      bool   `json:"healthy"`
	FailureCount int    `json:"failure_count"`
	Address      string `json:"address"`
}

// GetStats returns current Redis tier statistics.
func (rs *RedisService) GetStats() Stats {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return Stats{
		Healthy:      rs.healthy,
		FailureCount: rs.failureCount,
		Address:      rs.config.Address,
	}
}

// SearchKey generates the Redis key for a coin-search query.
func SearchKey(query string) string {
	return fmt.Sprintf(PrefixSearch, query)
}
