package observability

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RedisMetricsHook instruments every redis command with duration, error
// classification and keyspace hit/miss counts.
type RedisMetricsHook struct{}

var (
	redisOnce        sync.Once
	redisDuration    metric.Float64Histogram
	redisErrors      metric.Int64Counter
	redisKeyspaceOps metric.Int64Counter
)

func redisInstruments() (metric.Float64Histogram, metric.Int64Counter, metric.Int64Counter) {
	redisOnce.Do(func() {
		meter := otel.Meter("github.com/atifjaved999/mini-coaching/redis")
		redisDuration, _ = meter.Float64Histogram("redis_command_duration_seconds",
			metric.WithDescription("Redis command latency"))
		redisErrors, _ = meter.Int64Counter("redis_command_errors_total",
			metric.WithDescription("Redis command errors by class"))
		redisKeyspaceOps, _ = meter.Int64Counter("redis_keyspace_results_total",
			metric.WithDescription("Redis read results by hit/miss"))
	})
	return redisDuration, redisErrors, redisKeyspaceOps
}

func (RedisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (RedisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		duration, errCounter, keyspace := redisInstruments()
		start := time.Now()
		err := next(ctx, cmd)
		if duration != nil {
			duration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(attribute.String("command", cmd.Name())))
		}
		if err != nil && err != redis.Nil && errCounter != nil {
			errCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("command", cmd.Name()),
				attribute.String("class", classifyRedisError(err)),
			))
		}
		if hits, misses, ok := classifyKeyspaceOutcome(cmd); ok && keyspace != nil {
			if hits > 0 {
				keyspace.Add(ctx, hits, metric.WithAttributes(attribute.String("result", "hit")))
			}
			if misses > 0 {
				keyspace.Add(ctx, misses, metric.WithAttributes(attribute.String("result", "miss")))
			}
		}
		return err
	}
}

func (RedisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return next(ctx, cmds)
	}
}

// classifyKeyspaceOutcome inspects read commands for hit/miss accounting.
// GET misses report redis.Nil; MGET reports nil slice entries per miss.
func classifyKeyspaceOutcome(cmd redis.Cmder) (hits, misses int64, ok bool) {
	switch c := cmd.(type) {
	case *redis.StringCmd:
		if c.Name() != "get" {
			return 0, 0, false
		}
		if c.Err() == redis.Nil {
			return 0, 1, true
		}
		if c.Err() == nil {
			return 1, 0, true
		}
		return 0, 0, false
	case *redis.SliceCmd:
		if c.Name() != "mget" || c.Err() != nil {
			return 0, 0, false
		}
		for _, v := range c.Val() {
			if v == nil {
				misses++
			} else {
				hits++
			}
		}
		return hits, misses, true
	default:
		return 0, 0, false
	}
}

func classifyRedisError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "other"
	}
}
