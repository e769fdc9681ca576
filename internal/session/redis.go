package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexanderramin/eventwise/internal/domain"
)

var tracer = otel.Tracer("session.redis")

const defaultKeyPrefix = "eventwise"

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	KeyPrefix string
	// TTL expires idle sessions. Zero keeps them until cleared.
	TTL time.Duration
}

// redisBackend stores each session as one JSON document plus an index set of
// ids. Every Redis failure is returned to the caller.
type redisBackend struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store that keeps session documents in Redis.
func NewRedisStore(rdb redis.UniversalClient, opts RedisOptions) *SessionStore {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return newSessionStore(&redisBackend{rdb: rdb, prefix: prefix, ttl: opts.TTL})
}

// OpenRedis connects and pings, the way every caller wants before serving.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("session: redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *redisBackend) key(id string) string {
	return r.prefix + ":session:" + id
}

func (r *redisBackend) indexKey() string {
	return r.prefix + ":sessions"
}

func (r *redisBackend) load(ctx context.Context, id string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "session.load",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: decoding %s: %w", id, err)
	}
	return &s, nil
}

func (r *redisBackend) save(ctx context.Context, s *domain.Session) error {
	ctx, span := tracer.Start(ctx, "session.save",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.Int64("session.ttl_ms", r.ttl.Milliseconds()),
		))
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encoding %s: %w", s.ID, err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.key(s.ID), data, r.ttl)
	pipe.SAdd(ctx, r.indexKey(), s.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (r *redisBackend) remove(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "session.remove",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

func (r *redisBackend) removeAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session.removeAll")
	defer span.End()

	ids, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: redis members: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.key(id))
	}
	keys = append(keys, r.indexKey())
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: redis delete all: %w", err)
	}
	return nil
}

// ids returns indexed ids whose documents still exist; expired ones are
// pruned from the index as a side effect.
func (r *redisBackend) ids(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "session.ids")
	defer span.End()

	ids, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: redis members: %w", err)
	}
	if r.ttl == 0 || len(ids) == 0 {
		return ids, nil
	}

	live := make([]string, 0, len(ids))
	var stale []any
	for _, id := range ids {
		n, err := r.rdb.Exists(ctx, r.key(id)).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: redis exists: %w", err)
		}
		if n == 0 {
			stale = append(stale, id)
			continue
		}
		live = append(live, id)
	}
	if len(stale) > 0 {
		if err := r.rdb.SRem(ctx, r.indexKey(), stale...).Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: redis prune: %w", err)
		}
	}
	return live, nil
}
