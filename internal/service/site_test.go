package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-server/internal/cache"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store"
)

// withRedis wires a miniredis-backed cache into both the read model and the
// invalidation path of h.
func (h *harness) withRedis(t *testing.T) *SiteService {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rc := cache.NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logger)
	t.Cleanup(func() { rc.Close() })

	effects := NewSideEffects(h.registrar, cache.Multi{h.cache, rc}, time.Second, logger)
	h.communities.effects = effects
	h.events.effects = effects
	return NewSiteService(h.store, rc, testRoot, logger)
}

func TestSite_ResolvesSubdomainAndCustomDomain(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t, "1")
	c := h.community(t, owner, "test")
	_, err := h.communities.UpdateField(as(owner.ID), c.ID, domain.CommunityFieldCustomDomain, FieldInput{Value: "example.com"})
	require.NoError(t, err)

	site := NewSiteService(h.store, nil, testRoot, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	bySub, err := site.GetCommunityData(ctx, "Test.Gatherly.Test")
	require.NoError(t, err)
	assert.Equal(t, c.ID, bySub.ID)

	byDomain, err := site.GetCommunityData(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byDomain.ID)

	_, err = site.GetCommunityData(ctx, "missing.gatherly.test")
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestSite_CommunityMetadataInvalidatedByUpdate(t *testing.T) {
	h := newHarness(t)
	site := h.withRedis(t)
	owner := h.user(t, "1")
	c := h.community(t, owner, "test")
	ctx := context.Background()
	host := "test.gatherly.test"

	first, err := site.GetCommunityData(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, "Community test", first.Name)

	// A write that bypasses the services leaves the cached copy in place.
	_, err = h.store.UpdateCommunityFields(ctx, c.ID, store.Fields{domain.CommunityFieldName: "Stale"})
	require.NoError(t, err)
	cached, err := site.GetCommunityData(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, "Community test", cached.Name)

	_, err = h.communities.UpdateField(as(owner.ID), c.ID, domain.CommunityFieldName, FieldInput{Value: "Fresh"})
	require.NoError(t, err)

	fresh, err := site.GetCommunityData(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", fresh.Name)
}

func TestSite_EventPageFollowsCommunityUpdates(t *testing.T) {
	h := newHarness(t)
	site := h.withRedis(t)
	owner := h.user(t, "1")
	c := h.community(t, owner, "test")
	e := h.event(t, owner, c, "launch")
	ctx := context.Background()
	host := "test.gatherly.test"

	_, err := h.events.UpdateField(as(owner.ID), e.ID, domain.EventFieldPublished, FieldInput{Value: "true"})
	require.NoError(t, err)

	page, err := site.GetEventData(ctx, host, "launch")
	require.NoError(t, err)
	assert.Equal(t, "Community test", page.Community.Name)

	_, err = h.communities.UpdateField(as(owner.ID), c.ID, domain.CommunityFieldName, FieldInput{Value: "Renamed"})
	require.NoError(t, err)

	page, err = site.GetEventData(ctx, host, "launch")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", page.Community.Name)
}

func TestSite_SubdomainRenameHidesOldHost(t *testing.T) {
	h := newHarness(t)
	site := h.withRedis(t)
	owner := h.user(t, "1")
	c := h.community(t, owner, "test")
	e := h.event(t, owner, c, "launch")
	ctx := context.Background()

	_, err := h.events.UpdateField(as(owner.ID), e.ID, domain.EventFieldPublished, FieldInput{Value: "true"})
	require.NoError(t, err)
	_, err = site.GetEventData(ctx, "test.gatherly.test", "launch")
	require.NoError(t, err)

	_, err = h.communities.UpdateField(as(owner.ID), c.ID, domain.CommunityFieldSubdomain, FieldInput{Value: "renamed"})
	require.NoError(t, err)

	_, err = site.GetEventData(ctx, "test.gatherly.test", "launch")
	requireCode(t, err, domainerrors.CodeNotFound)

	page, err := site.GetEventData(ctx, "renamed.gatherly.test", "launch")
	require.NoError(t, err)
	assert.Equal(t, e.ID, page.Event.ID)
}

func TestSite_EventsFollowPublishState(t *testing.T) {
	h := newHarness(t)
	site := h.withRedis(t)
	owner := h.user(t, "1")
	c := h.community(t, owner, "test")
	launch := h.event(t, owner, c, "launch")
	recap := h.event(t, owner, c, "recap")
	ctx := context.Background()
	host := "test.gatherly.test"

	events, err := site.GetEventsForCommunity(ctx, host)
	require.NoError(t, err)
	assert.Empty(t, events)

	for _, e := range []*domain.Event{launch, recap} {
		_, err = h.events.UpdateField(as(owner.ID), e.ID, domain.EventFieldPublished, FieldInput{Value: "true"})
		require.NoError(t, err)
	}

	events, err = site.GetEventsForCommunity(ctx, host)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	page, err := site.GetEventData(ctx, host, "launch")
	require.NoError(t, err)
	assert.Equal(t, launch.ID, page.Event.ID)
	assert.Equal(t, c.ID, page.Community.ID)
	require.Len(t, page.Adjacent, 1)
	assert.Equal(t, recap.ID, page.Adjacent[0].ID)

	sitemap, err := site.Sitemap(ctx, host)
	require.NoError(t, err)
	require.Len(t, sitemap, 3)
	assert.Equal(t, "https://test.gatherly.test", sitemap[0].URL)

	_, err = h.events.UpdateField(as(owner.ID), launch.ID, domain.EventFieldPublished, FieldInput{Value: "false"})
	require.NoError(t, err)

	_, err = site.GetEventData(ctx, host, "launch")
	requireCode(t, err, domainerrors.CodeNotFound)

	events, err = site.GetEventsForCommunity(ctx, host)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, recap.ID, events[0].ID)

	// The sibling list on the remaining page drops the unpublished event.
	page, err = site.GetEventData(ctx, host, "recap")
	require.NoError(t, err)
	assert.Empty(t, page.Adjacent)
}
