package cache

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	r := NewRedis(client, time.Minute, logger)
	t.Cleanup(func() { r.Close() })
	return r, mr
}

type siteData struct {
	Name string `json:"name"`
}

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	r, _ := setupTestRedis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (siteData, error) {
		calls++
		return siteData{Name: "Test"}, nil
	}

	tags := []string{"test.gatherly.app-metadata", "example.com-metadata"}

	v, err := Fetch(ctx, r, "community:test.gatherly.app", tags, load)
	require.NoError(t, err)
	assert.Equal(t, "Test", v.Name)

	v, err = Fetch(ctx, r, "community:test.gatherly.app", tags, load)
	require.NoError(t, err)
	assert.Equal(t, "Test", v.Name)
	assert.Equal(t, 1, calls, "second fetch should hit the cache")

	require.NoError(t, r.InvalidateTags(ctx, []string{"example.com-metadata"}))

	_, err = Fetch(ctx, r, "community:test.gatherly.app", tags, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "fetch after invalidation should reload")
}

func TestFetch_UnrelatedTagKeepsEntry(t *testing.T) {
	r, _ := setupTestRedis(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"launch"}, nil
	}

	_, err := Fetch(ctx, r, "events:test.gatherly.app", []string{"test.gatherly.app-events"}, load)
	require.NoError(t, err)

	require.NoError(t, r.InvalidateTags(ctx, []string{"test.gatherly.app-metadata"}))

	_, err = Fetch(ctx, r, "events:test.gatherly.app", []string{"test.gatherly.app-events"}, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	r, _ := setupTestRedis(t)
	boom := errors.New("store down")

	_, err := Fetch(context.Background(), r, "k", nil, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := Fetch(context.Background(), r, "k", nil, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_NilCacheCallsThrough(t *testing.T) {
	v, err := Fetch(context.Background(), nil, "k", []string{"t"}, func(context.Context) (string, error) {
		return "direct", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
}

func TestFetch_RedisDownFallsBack(t *testing.T) {
	r, mr := setupTestRedis(t)
	mr.Close()

	v, err := Fetch(context.Background(), r, "k", []string{"t"}, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestInvalidateTags_RemovesTagSetAndEntries(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := Fetch(ctx, r, "a", []string{"tag-1"}, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = Fetch(ctx, r, "b", []string{"tag-1"}, func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)

	assert.True(t, mr.Exists(tagPrefix+"tag-1"))
	members, err := mr.SMembers(tagPrefix + "tag-1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, r.InvalidateTags(ctx, []string{"tag-1"}))

	assert.False(t, mr.Exists(tagPrefix+"tag-1"))
	assert.False(t, mr.Exists(keyPrefix+"a"))
	assert.False(t, mr.Exists(keyPrefix+"b"))
}

func TestInvalidateTags_Publishes(t *testing.T) {
	r, _ := setupTestRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan string, 1)
	subscribed := make(chan struct{})
	go func() {
		sub := r.client.Subscribe(ctx, InvalidationChannel)
		defer sub.Close()
		if _, err := sub.Receive(ctx); err != nil {
			return
		}
		close(subscribed)
		msg, err := sub.ReceiveMessage(ctx)
		if err == nil {
			received <- msg.Payload
		}
	}()

	select {
	case <-subscribed:
	case <-ctx.Done():
		t.Fatal("subscription not established")
	}

	require.NoError(t, r.InvalidateTags(ctx, []string{"test.gatherly.app-events"}))

	select {
	case tag := <-received:
		assert.Equal(t, "test.gatherly.app-events", tag)
	case <-ctx.Done():
		t.Fatal("no invalidation message received")
	}
}

func TestSubscribe_DeliversTags(t *testing.T) {
	r, _ := setupTestRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan string, 1)
	go func() {
		_ = r.Subscribe(ctx, func(tag string) { got <- tag })
	}()

	// Publish until the subscriber is attached.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case tag := <-got:
			assert.Equal(t, "example.com-launch", tag)
			return
		case <-ticker.C:
			require.NoError(t, r.client.Publish(ctx, InvalidationChannel, "example.com-launch").Err())
		case <-ctx.Done():
			t.Fatal("subscriber never received a tag")
		}
	}
}
