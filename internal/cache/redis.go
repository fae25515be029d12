package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// InvalidationChannel carries every invalidated tag.
	InvalidationChannel = "cache:invalidate"

	keyPrefix = "cache:entry:"
	tagPrefix = "cache:tag:"

	defaultTTL = time.Hour
)

// Redis caches JSON-encoded values and indexes each key under its tags so a
// tag can be cleared in one call.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Invalidator = (*Redis)(nil)

// NewRedis creates a Redis-backed cache whose entries live for ttl.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Dial parses a redis:// URL and verifies the server is reachable.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Fetch returns the cached value for key, or computes it with fn and caches
// it under tags. A nil cache always calls fn. Cache failures are logged and
// never fail the read.
func Fetch[T any](ctx context.Context, r *Redis, key string, tags []string, fn func(context.Context) (T, error)) (T, error) {
	if r == nil {
		return fn(ctx)
	}

	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		r.logger.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("cache read failed", "key", key, "error", err)
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}

	if err := r.store(ctx, key, tags, v); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return v, nil
}

// store writes the entry and adds it to each tag set in one transaction.
func (r *Redis) store(ctx context.Context, key string, tags []string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+key, data, r.ttl)
		for _, tag := range tags {
			// Each add pushes the set's expiry past that of every member.
			pipe.SAdd(ctx, tagPrefix+tag, keyPrefix+key)
			pipe.Expire(ctx, tagPrefix+tag, r.ttl)
		}
		return nil
	})
	return err
}

// InvalidateTags deletes every entry recorded under each tag, deletes the
// tag sets, and publishes each tag on InvalidationChannel.
func (r *Redis) InvalidateTags(ctx context.Context, tags []string) error {
	var errs []error
	for _, tag := range tags {
		if err := r.invalidateTag(ctx, tag); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Redis) invalidateTag(ctx context.Context, tag string) error {
	members, err := r.client.SMembers(ctx, tagPrefix+tag).Result()
	if err != nil {
		return err
	}

	keys := append(members, tagPrefix+tag)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	if err := r.client.Publish(ctx, InvalidationChannel, tag).Err(); err != nil {
		return err
	}

	r.logger.Debug("invalidated cache tag", "tag", tag, "entries", len(members))
	return nil
}

// Subscribe calls fn with every tag published on InvalidationChannel until
// ctx is done.
func (r *Redis) Subscribe(ctx context.Context, fn func(tag string)) error {
	sub := r.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg.Payload)
		}
	}
}
