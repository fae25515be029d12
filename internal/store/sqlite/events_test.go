package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/id"
	"github.com/gatherly/gatherly-server/internal/store"
)

func seedEvent(t *testing.T, s *Store, c *domain.Community, slug string) *domain.Event {
	t.Helper()
	now := time.Now()
	e := &domain.Event{
		Entity:      domain.Entity{ID: id.MustGenerate("event"), CreatedAt: now, UpdatedAt: now},
		Title:       "Event " + slug,
		Slug:        slug,
		UserID:      c.UserID,
		CommunityID: c.ID,
	}
	if err := s.CreateEvent(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

func TestCreateAndGetEvent(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "1")
	c := seedCommunity(t, s, owner.ID, "demo")
	e := seedEvent(t, s, c, "launch")

	got, err := s.GetEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "launch", got.Slug)
	assert.Equal(t, c.ID, got.CommunityID)
	assert.False(t, got.Published)
}

func TestEventSlug_UniquePerCommunity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "1")
	alpha := seedCommunity(t, s, owner.ID, "alpha")
	beta := seedCommunity(t, s, owner.ID, "beta")

	seedEvent(t, s, alpha, "launch")
	// Same slug in a different community is fine.
	seedEvent(t, s, beta, "launch")

	second := seedEvent(t, s, alpha, "second")
	_, err := s.UpdateEventFields(ctx, second.ID, store.Fields{domain.EventFieldSlug: "launch"})

	uv, ok := store.AsUniqueViolation(err)
	require.True(t, ok, "expected unique violation, got %v", err)
	assert.Equal(t, "slug", uv.Field)
}

func TestUpdateEventFields_Published(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "1")
	c := seedCommunity(t, s, owner.ID, "demo")
	e := seedEvent(t, s, c, "launch")

	updated, err := s.UpdateEventFields(ctx, e.ID, store.Fields{domain.EventFieldPublished: true})
	require.NoError(t, err)
	assert.True(t, updated.Published)

	published, err := s.ListPublishedEvents(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, e.ID, published[0].ID)

	bySlug, err := s.GetPublishedEventBySlug(ctx, c.ID, "launch")
	require.NoError(t, err)
	assert.Equal(t, e.ID, bySlug.ID)

	_, err = s.UpdateEventFields(ctx, e.ID, store.Fields{domain.EventFieldPublished: false})
	require.NoError(t, err)

	_, err = s.GetPublishedEventBySlug(ctx, c.ID, "launch")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateEventFields_Content(t *testing.T) {
	s := newTestStore(t)
	owner := seedUser(t, s, "1")
	c := seedCommunity(t, s, owner.ID, "demo")
	e := seedEvent(t, s, c, "launch")

	updated, err := s.UpdateEventFields(context.Background(), e.ID, store.Fields{
		domain.EventFieldTitle:       "Launch party",
		domain.EventFieldDescription: "Come celebrate",
		domain.EventFieldContent:     "# Agenda",
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch party", updated.Title)
	assert.Equal(t, "Come celebrate", updated.Description)
	assert.Equal(t, "# Agenda", updated.Content)
}

func TestListEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "1")
	other := seedUser(t, s, "2")
	c := seedCommunity(t, s, owner.ID, "demo")
	oc := seedCommunity(t, s, other.ID, "other")
	seedEvent(t, s, c, "a")
	seedEvent(t, s, c, "b")
	seedEvent(t, s, oc, "c")

	byCommunity, err := s.ListEventsByCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, byCommunity, 2)

	byUser, err := s.ListEventsByUser(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "c", byUser[0].Slug)
}

func TestDeleteEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "1")
	c := seedCommunity(t, s, owner.ID, "demo")
	e := seedEvent(t, s, c, "launch")

	require.NoError(t, s.DeleteEvent(ctx, e.ID))
	assert.ErrorIs(t, s.DeleteEvent(ctx, e.ID), store.ErrNotFound)
}
