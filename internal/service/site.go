package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gatherly/gatherly-server/internal/cache"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store"
)

// maxAdjacentEvents caps the "more events" list on an event page.
const maxAdjacentEvents = 3

// SiteService serves the public read model of community sites, addressed by
// host: "{subdomain}.{root}" or a custom domain. Reads are cached under the
// same tags the mutation services invalidate.
type SiteService struct {
	store      store.Store
	cache      *cache.Redis
	rootDomain string
	logger     *slog.Logger
}

// NewSiteService creates a new site service. A nil cache reads through to
// the store on every call.
func NewSiteService(store store.Store, c *cache.Redis, rootDomain string, logger *slog.Logger) *SiteService {
	return &SiteService{
		store:      store,
		cache:      c,
		rootDomain: rootDomain,
		logger:     logger,
	}
}

// EventPage is a published event with its community and a few sibling events.
type EventPage struct {
	Event     *domain.Event     `json:"event"`
	Community *domain.Community `json:"community"`
	Adjacent  []*domain.Event   `json:"adjacent"`
}

// SitemapEntry is one URL of a community sitemap.
type SitemapEntry struct {
	URL          string    `json:"url"`
	LastModified time.Time `json:"lastModified"`
}

// GetCommunityData returns the community served under host.
func (s *SiteService) GetCommunityData(ctx context.Context, host string) (*domain.Community, error) {
	host = strings.ToLower(host)
	return cache.Fetch(ctx, s.cache, "community:"+host, []string{cache.MetadataTag(host)},
		func(ctx context.Context) (*domain.Community, error) {
			return s.resolve(ctx, host)
		})
}

// GetEventsForCommunity returns the published events served under host, newest first.
func (s *SiteService) GetEventsForCommunity(ctx context.Context, host string) ([]*domain.Event, error) {
	c, err := s.GetCommunityData(ctx, host)
	if err != nil {
		return nil, err
	}
	host = strings.ToLower(host)
	return cache.Fetch(ctx, s.cache, "events:"+host, []string{cache.EventsTag(host)},
		func(ctx context.Context) ([]*domain.Event, error) {
			events, err := s.store.ListPublishedEvents(ctx, c.ID)
			if err != nil {
				return nil, domainerrors.Persistence(err)
			}
			return events, nil
		})
}

// GetEventData returns the published event with slug served under host.
func (s *SiteService) GetEventData(ctx context.Context, host, slug string) (*EventPage, error) {
	c, err := s.GetCommunityData(ctx, host)
	if err != nil {
		return nil, err
	}
	host = strings.ToLower(host)
	// The page embeds the community, so metadata changes clear it too.
	tags := []string{cache.EventTag(host, slug), cache.EventsTag(host), cache.MetadataTag(host)}
	return cache.Fetch(ctx, s.cache, "event:"+host+":"+slug, tags,
		func(ctx context.Context) (*EventPage, error) {
			e, err := s.store.GetPublishedEventBySlug(ctx, c.ID, slug)
			if err != nil {
				if domainerrors.Is(err, store.ErrNotFound) {
					return nil, domainerrors.NotFound("Event not found")
				}
				return nil, domainerrors.Persistence(err)
			}

			published, err := s.store.ListPublishedEvents(ctx, c.ID)
			if err != nil {
				return nil, domainerrors.Persistence(err)
			}
			adjacent := make([]*domain.Event, 0, maxAdjacentEvents)
			for _, other := range published {
				if other.ID == e.ID {
					continue
				}
				adjacent = append(adjacent, other)
				if len(adjacent) == maxAdjacentEvents {
					break
				}
			}

			return &EventPage{Event: e, Community: c, Adjacent: adjacent}, nil
		})
}

// Sitemap lists the site root and every published event under host.
func (s *SiteService) Sitemap(ctx context.Context, host string) ([]SitemapEntry, error) {
	c, err := s.GetCommunityData(ctx, host)
	if err != nil {
		return nil, err
	}
	events, err := s.GetEventsForCommunity(ctx, host)
	if err != nil {
		return nil, err
	}

	base := "https://" + strings.ToLower(host)
	entries := make([]SitemapEntry, 0, len(events)+1)
	entries = append(entries, SitemapEntry{URL: base, LastModified: c.UpdatedAt})
	for _, e := range events {
		entries = append(entries, SitemapEntry{URL: base + "/" + e.Slug, LastModified: e.UpdatedAt})
	}
	return entries, nil
}

// resolve finds the community for host by subdomain or custom domain.
func (s *SiteService) resolve(ctx context.Context, host string) (*domain.Community, error) {
	var (
		c   *domain.Community
		err error
	)
	if sub, ok := strings.CutSuffix(host, "."+s.rootDomain); ok {
		c, err = s.store.GetCommunityBySubdomain(ctx, sub)
	} else {
		c, err = s.store.GetCommunityByCustomDomain(ctx, host)
	}
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("No site for %s", host)
		}
		return nil, domainerrors.Persistence(err)
	}
	return c, nil
}
