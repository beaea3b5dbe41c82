package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"howlo/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter - счётчик запросов в окне фиксированной длины.
// nil лимитер пропускает всё.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// InitRedisRateLimiter подключается к redis. Пустой addr или limit <= 0 - лимит выключен
func InitRedisRateLimiter(addr, password string, db, limit int) *RedisRateLimiter {
	if addr == "" || limit <= 0 {
		logger.Warn("rate limiter выключен", "redis_addr", addr, "limit", limit)
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// fail-open: стартуем и без redis
		logger.Warn("redis недоступен", "addr", addr, "error", err)
	}

	return NewRedisRateLimiter(client, limit, time.Minute)
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "howlo:rl:",
		now:    time.Now,
	}
}

// Allow увеличивает счётчик ключа в текущем окне
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	k := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(l.limit), nil
}

func (l *RedisRateLimiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}

// Middleware ограничивает запросы по ключу keyFn. Пустой ключ не ограничивается.
// deny отвечает на превышение; nil - 429
func (l *RedisRateLimiter) Middleware(keyFn func(*gin.Context) string, deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter недоступен, пропускаем", "error", err)
			c.Next()
			return
		}
		if !ok {
			if deny != nil {
				deny(c)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
