package providers

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/cache"
	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
)

// CacheHandle holds the invalidation chain and the optional Redis tag cache.
type CacheHandle struct {
	// Redis is nil when no Redis URL is configured.
	Redis       *cache.Redis
	Invalidator cache.Invalidator
	cancel      context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.Redis != nil {
		return h.Redis.Close()
	}
	return nil
}

// ProvideCache provides the tag cache and the invalidation chain.
// With Redis, invalidations reach SSE clients through the pub/sub bus so
// every instance hears them. Without it the SSE manager is invalidated directly.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	var chain cache.Multi

	if cfg.Cache.CloudFrontDistributionID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("cloudfront config: %w", err)
		}
		chain = append(chain, cache.NewCloudFront(
			cloudfront.NewFromConfig(awsCfg), cfg.Cache.CloudFrontDistributionID, log.Logger,
		))
		log.Info("CDN invalidation enabled", "distribution_id", cfg.Cache.CloudFrontDistributionID)
	}

	if cfg.Cache.RedisURL == "" {
		log.Info("Tag cache disabled, invalidations go to stream clients only")
		return &CacheHandle{Invalidator: append(chain, sseHandle.Manager)}, nil
	}

	client, err := cache.Dial(context.Background(), cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	tagCache := cache.NewRedis(client, cfg.Cache.TTL, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := tagCache.Subscribe(ctx, sseHandle.Invalidated); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Cache bus subscription ended", "error", err)
		}
	}()

	log.Info("Tag cache initialized", "ttl", cfg.Cache.TTL)

	return &CacheHandle{
		Redis:       tagCache,
		Invalidator: append(chain, tagCache),
		cancel:      cancel,
	}, nil
}
