package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/constants"
	"resume-matcher/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("resume-matcher/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// FormatKey 将动态部分依次填入键模板，例如 FormatKey(constants.KeyDecodedText, md5)
func FormatKey(keyTemplate string, parts ...string) string {
	args := make([]interface{}, len(parts))
	for i, p := range parts {
		args[i] = strings.TrimSpace(p)
	}
	return fmt.Sprintf(keyTemplate, args...)
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	ttl := time.Duration(cfg.TextCacheTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = constants.DefaultTextCacheTTL
	}
	return &Redis{Client: client, ttl: ttl}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetDecodedText 按原始文件MD5读取缓存的解码文本，未命中时返回 ("", false, nil)
func (r *Redis) GetDecodedText(ctx context.Context, fileMD5 string) (string, bool, error) {
	if r.Client == nil {
		return "", false, fmt.Errorf("redis客户端未初始化")
	}
	key := FormatKey(constants.KeyDecodedText, fileMD5)

	ctx, span := redisTracer.Start(ctx, "Redis.GetDecodedText", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
		return "", false, nil
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", false, fmt.Errorf("读取解码文本缓存失败: %w", err)
	}
	span.SetAttributes(
		attribute.Bool("db.redis.key_exists", true),
		attribute.Int("db.redis.value_length", len(val)),
	)
	return val, true, nil
}

// PutDecodedText 缓存解码文本，过期时间取配置值
func (r *Redis) PutDecodedText(ctx context.Context, fileMD5 string, text string) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	key := FormatKey(constants.KeyDecodedText, fileMD5)

	ctx, span := redisTracer.Start(ctx, "Redis.PutDecodedText", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "SET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		attribute.Int("db.redis.value_length", len(text)),
		attribute.Int64("db.redis.expiration_ms", r.ttl.Milliseconds()),
	)

	if err := r.Client.Set(ctx, key, text, r.ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入解码文本缓存失败: %w", err)
	}
	return nil
}
