package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatherly/gatherly-server/internal/cache"
	"github.com/gatherly/gatherly-server/internal/registrar"
)

// DefaultSideEffectTimeout bounds registrar and cache calls when no timeout is configured.
const DefaultSideEffectTimeout = 10 * time.Second

// SideEffects runs the registrar and cache calls that follow a successful
// write. They run inline but detached from request cancellation, and their
// failures are logged, never returned.
type SideEffects struct {
	registrar registrar.Registrar
	cache     cache.Invalidator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSideEffects creates the side-effect runner. Nil collaborators are
// replaced with no-ops.
func NewSideEffects(reg registrar.Registrar, inv cache.Invalidator, timeout time.Duration, logger *slog.Logger) *SideEffects {
	if reg == nil {
		reg = registrar.Noop{}
	}
	if inv == nil {
		inv = cache.Noop{}
	}
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SideEffects{
		registrar: reg,
		cache:     inv,
		timeout:   timeout,
		logger:    logger,
	}
}

func (s *SideEffects) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

// AddDomain registers domain with the registrar.
func (s *SideEffects) AddDomain(ctx context.Context, domain string) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.registrar.AddDomain(ctx, domain); err != nil {
		s.logger.Warn("failed to register custom domain", "domain", domain, "error", err)
		return
	}
	s.logger.Info("registered custom domain", "domain", domain)
}

// RemoveDomain deregisters domain from the registrar.
func (s *SideEffects) RemoveDomain(ctx context.Context, domain string) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.registrar.RemoveDomain(ctx, domain); err != nil {
		s.logger.Warn("failed to remove custom domain", "domain", domain, "error", err)
		return
	}
	s.logger.Info("removed custom domain", "domain", domain)
}

// Invalidate clears tags from every cache layer.
func (s *SideEffects) Invalidate(ctx context.Context, tags []string) {
	if len(tags) == 0 {
		return
	}
	ctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.cache.InvalidateTags(ctx, tags); err != nil {
		s.logger.Warn("cache invalidation failed", "tags", tags, "error", err)
		return
	}
	s.logger.Debug("cache invalidated", "tags", tags)
}
