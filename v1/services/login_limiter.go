package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vinothroacs/kalyanmalai-backend/pkg/monitoring"
)

const (
	defaultLoginMaxFailures = 5
	defaultLoginWindow      = 15 * time.Minute
	loginFailureKeyPrefix   = "login_failures:"
)

// LoginLimiter throttles repeated failed logins for the same email
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RedisLoginLimiter keeps failure counters in Redis so every replica shares them
type RedisLoginLimiter struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// RedisConfig holds all configuration for the Redis client
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates and pings a go-redis client
func NewRedisClient(cfg *RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// NewRedisLoginLimiter creates a Redis-backed limiter
func NewRedisLoginLimiter(client *redis.Client, maxFailures int, window time.Duration) *RedisLoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultLoginMaxFailures
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	return &RedisLoginLimiter{client: client, maxFailures: int64(maxFailures), window: window}
}

func (l *RedisLoginLimiter) key(key string) string {
	return loginFailureKeyPrefix + strings.ToLower(key)
}

// Allow reports whether another attempt is permitted
func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	count, err := l.client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		err = nil
	}
	monitoring.RecordExternalCall(ctx, "redis", "get", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to read login failures: %w", err)
	}
	return count < l.maxFailures, nil
}

// RecordFailure increments the counter and restarts its expiry window
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, key string) error {
	start := time.Now()
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, l.key(key))
	pipe.Expire(ctx, l.key(key), l.window)
	_, err := pipe.Exec(ctx)
	monitoring.RecordExternalCall(ctx, "redis", "incr", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if incr.Val() >= l.maxFailures {
		slog.Warn("Login throttled", "key", key, "failures", incr.Val())
	}
	return nil
}

// Reset clears the counter after a successful login
func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}

// MemoryLoginLimiter is the single-process fallback used when Redis is not configured
type MemoryLoginLimiter struct {
	failures    map[string][]time.Time
	mutex       sync.Mutex
	maxFailures int
	window      time.Duration
	now         Clock
	lastSweep   time.Time
}

// NewMemoryLoginLimiter creates an in-memory limiter
func NewMemoryLoginLimiter(maxFailures int, window time.Duration, clock Clock) *MemoryLoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultLoginMaxFailures
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryLoginLimiter{
		failures:    make(map[string][]time.Time),
		maxFailures: maxFailures,
		window:      window,
		now:         clock,
		lastSweep:   clock(),
	}
}

// sweep drops every key whose failures have all aged out, at most once per window.
// Caller holds the mutex.
func (l *MemoryLoginLimiter) sweep() {
	now := l.now()
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, failures := range l.failures {
		if len(failures) == 0 || now.Sub(failures[len(failures)-1]) >= l.window {
			delete(l.failures, key)
		}
	}
}

// prune drops failures outside the window. Caller holds the mutex.
func (l *MemoryLoginLimiter) prune(key string) []time.Time {
	now := l.now()
	var valid []time.Time
	for _, at := range l.failures[key] {
		if now.Sub(at) < l.window {
			valid = append(valid, at)
		}
	}
	if len(valid) == 0 {
		delete(l.failures, key)
	} else {
		l.failures[key] = valid
	}
	return valid
}

// Allow reports whether another attempt is permitted
func (l *MemoryLoginLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.sweep()
	return len(l.prune(strings.ToLower(key))) < l.maxFailures, nil
}

// RecordFailure records a failed attempt
func (l *MemoryLoginLimiter) RecordFailure(_ context.Context, key string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.sweep()
	key = strings.ToLower(key)
	l.failures[key] = append(l.prune(key), l.now())
	return nil
}

// Reset clears failures for key
func (l *MemoryLoginLimiter) Reset(_ context.Context, key string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.failures, strings.ToLower(key))
	return nil
}
